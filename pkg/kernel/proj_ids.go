package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (r UserID) String() string  { return string(r) }
func (r UserID) IsEmpty() bool   { return string(r) == "" }

// TenantID scopes a user to an organisation. Ingestion treats it as the
// client when the user has no direct client.
type TenantID string

func (r TenantID) String() string     { return string(r) }
func (r TenantID) IsEmpty() bool      { return string(r) == "" }
func (r TenantID) ClientID() ClientID { return ClientID(r) }

type CandidateID string

func NewCandidateID(id string) CandidateID { return CandidateID(id) }
func (r CandidateID) String() string       { return string(r) }
func (r CandidateID) IsEmpty() bool        { return string(r) == "" }

type ApplicationID string

func NewApplicationID(id string) ApplicationID { return ApplicationID(id) }
func (r ApplicationID) String() string         { return string(r) }
func (r ApplicationID) IsEmpty() bool          { return string(r) == "" }

// ClientID identifies a hiring company. It doubles as the tenant key for
// resume ingestion.
type ClientID string

func NewClientID(id string) ClientID { return ClientID(id) }
func (r ClientID) String() string    { return string(r) }
func (r ClientID) IsEmpty() bool     { return string(r) == "" }

type ResumeJobID string

func NewResumeJobID(id string) ResumeJobID { return ResumeJobID(id) }
func (r ResumeJobID) String() string       { return string(r) }
func (r ResumeJobID) IsEmpty() bool        { return string(r) == "" }
