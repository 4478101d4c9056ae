package resumeparser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/internal/pdf"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

const (
	DefaultTextModel   = "gpt-4o-mini"
	DefaultVisionModel = "gpt-4o"

	// minTextChars is the text layer size below which a PDF is treated as
	// scanned and sent to the vision model instead
	minTextChars = 200
	maxTextChars = 30000
)

// ResumeParser extracts resume fields with OpenAI. PDFs with a text layer
// go through the chat model, scans and images through the vision model.
type ResumeParser struct {
	client      *openai.Client
	textModel   string
	visionModel string
	now         func() time.Time
}

type Option func(*ResumeParser)

func WithModels(text, vision string) Option {
	return func(p *ResumeParser) {
		if text != "" {
			p.textModel = text
		}
		if vision != "" {
			p.visionModel = vision
		}
	}
}

// WithRequestOptions forwards options to the OpenAI client (base URL,
// retries, http client)
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(p *ResumeParser) {
		client := openai.NewClient(opts...)
		p.client = &client
	}
}

func NewResumeParser(apiKey string, opts ...Option) *ResumeParser {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	p := &ResumeParser{
		client:      &client,
		textModel:   DefaultTextModel,
		visionModel: DefaultVisionModel,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ResumeData is the JSON shape the models are asked to return
type ResumeData struct {
	PersonalInfo    PersonalInfo  `json:"personal_info"`
	Summary         string        `json:"summary"`
	Skills          resume.Skills `json:"skills"`
	ExperienceYears *float64      `json:"experience_years"`
	Experience      []Experience  `json:"experience"`
}

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type Experience struct {
	Company   string `json:"company"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"` // YYYY-MM format
	EndDate   string `json:"end_date"`   // YYYY-MM or "Present"
}

const systemPrompt = `You are a professional resume parser. Extract the candidate's information and return ONLY valid JSON.`

const schemaPrompt = `Return the information in the following JSON structure:

{
  "personal_info": {
    "name": string,
    "email": string,
    "phone": string,
    "location": string
  },
  "summary": string (professional summary, max 80 words),
  "skills": string[] (technical and soft skills),
  "experience_years": number (total years of professional experience, null if unknown),
  "experience": [{
    "company": string,
    "title": string,
    "start_date": string (YYYY-MM format),
    "end_date": string (YYYY-MM or "Present")
  }]
}

If a field is not available use an empty string. Return ONLY the JSON.`

// Parse implements resume.Parser
func (p *ResumeParser) Parse(ctx context.Context, doc resume.Document) (*resume.ParsedResume, error) {
	if resume.NormalizeContentType(doc.ContentType) == "application/pdf" {
		text, err := pdf.ExtractText(doc.Data)
		if err != nil {
			return nil, err
		}
		if len(text) >= minTextChars {
			return p.ParseText(ctx, text)
		}
		logx.Debugf("PDF %s has %d chars of text, falling back to vision", doc.FileName, len(text))
	}

	pages, err := pdf.RenderJPEG(doc.Data, pdf.MaxRenderedPages)
	if err != nil {
		return nil, err
	}
	return p.ParseImages(ctx, pages)
}

// ParseText parses resume text through the chat model
func (p *ResumeParser) ParseText(ctx context.Context, text string) (*resume.ParsedResume, error) {
	if len(text) > maxTextChars {
		text = text[:maxTextChars]
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(schemaPrompt + "\n\nResume:\n" + text),
	}
	return p.complete(ctx, p.textModel, messages)
}

// ParseImages parses rendered pages through the vision model
func (p *ResumeParser) ParseImages(ctx context.Context, pages [][]byte) (*resume.ParsedResume, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages provided")
	}

	contentParts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{
				Type: constant.Text("text"),
				Text: schemaPrompt,
			},
		},
	}
	for _, pageData := range pages {
		dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pageData)
		contentParts = append(contentParts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				Type: constant.ImageURL("image_url"),
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL:    dataURL,
					Detail: "high",
				},
			},
		})
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: contentParts,
				},
			},
		},
	}
	return p.complete(ctx, p.visionModel, messages)
}

func (p *ResumeParser) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessageParamUnion) (*resume.ParsedResume, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	var data ResumeData
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &data); err != nil {
		return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	return data.ToParsedResume(p.now()), nil
}

// ToParsedResume flattens the model output. When the model gives no total
// the years are summed from the dated experience entries.
func (rd *ResumeData) ToParsedResume(now time.Time) *resume.ParsedResume {
	years := rd.ExperienceYears
	if years == nil {
		years = yearsFromExperience(rd.Experience, now)
	}
	return &resume.ParsedResume{
		Name:            strings.TrimSpace(rd.PersonalInfo.Name),
		Email:           strings.TrimSpace(rd.PersonalInfo.Email),
		Phone:           strings.TrimSpace(rd.PersonalInfo.Phone),
		Location:        strings.TrimSpace(rd.PersonalInfo.Location),
		Skills:          rd.Skills,
		ExperienceYears: years,
		RawTextSummary:  strings.TrimSpace(rd.Summary),
	}
}

func yearsFromExperience(exps []Experience, now time.Time) *float64 {
	var months int
	for _, exp := range exps {
		start, err := time.Parse("2006-01", strings.TrimSpace(exp.StartDate))
		if err != nil {
			continue
		}
		end := now
		if e := strings.TrimSpace(exp.EndDate); e != "" && !strings.EqualFold(e, "present") {
			if end, err = time.Parse("2006-01", e); err != nil {
				continue
			}
		}
		if d := (end.Year()-start.Year())*12 + int(end.Month()-start.Month()); d > 0 {
			months += d
		}
	}
	if months == 0 {
		return nil
	}
	years := float64(months*10/12) / 10
	return &years
}
