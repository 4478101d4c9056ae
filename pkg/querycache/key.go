package querycache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// OpDetail is the operation name of single-entity slots
const OpDetail = "detail"

// Key identifies one cached read. Two keys whose filters marshal to the
// same JSON document are the same key, whatever their Go types.
type Key struct {
	Resource  string
	Operation string
	Filter    any
	Page      int
	PageSize  int
}

// DetailKey is the slot mutations write returned entities into
func DetailKey(resource, id string) Key {
	return Key{Resource: resource, Operation: OpDetail, Filter: id}
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", k.Resource, k.Operation, filterHash(k.Filter), k.Page, k.PageSize)
}

func (k Key) isDetail() bool { return k.Operation == OpDetail }

// filterHash hashes the canonical JSON form of the filter. Round-tripping
// through any sorts map keys, so structs and maps with equal fields agree.
func filterHash(filter any) string {
	raw, err := json.Marshal(filter)
	if err != nil {
		raw = []byte(fmt.Sprintf("%#v", filter))
	} else {
		var generic any
		if err := json.Unmarshal(raw, &generic); err == nil {
			if canonical, err := json.Marshal(generic); err == nil {
				raw = canonical
			}
		}
	}

	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
