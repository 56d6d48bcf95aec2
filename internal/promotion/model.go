package promotion

import "time"

type Promotion struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Link               string    `json:"link"`
	PreviewImageFileID *string   `json:"preview_image_file_id"`
	ImageFileID        *string   `json:"image_file_id"`
	CreatedAt          time.Time `json:"created_at"`
}

type ClickEvent struct {
	ID          int64     `json:"id"`
	PromotionID int64     `json:"promotion_id"`
	UserID      *int64    `json:"user_id"`
	Action      string    `json:"action"`
	ClickedAt   time.Time `json:"clicked_at"`
}

// Field — закрытый перечень редактируемых полей промоакции.
type Field string

const (
	FieldTitle        Field = "title"
	FieldDescription  Field = "description"
	FieldLink         Field = "link"
	FieldPreviewImage Field = "preview_image_file_id"
	FieldDetailImage  Field = "image_file_id"
)

var allFields = map[Field]struct{}{
	FieldTitle:        {},
	FieldDescription:  {},
	FieldLink:         {},
	FieldPreviewImage: {},
	FieldDetailImage:  {},
}

// ParseField accepts only names from the allow-list; anything else is
// rejected at the boundary and never reaches a write statement.
func ParseField(s string) (Field, bool) {
	f := Field(s)
	_, ok := allFields[f]
	return f, ok
}

// IsImage reports whether the field holds a photo reference rather than text.
func (f Field) IsImage() bool {
	return f == FieldPreviewImage || f == FieldDetailImage
}

// Label is the human-readable name used in dialogue prompts.
func (f Field) Label() string {
	switch f {
	case FieldPreviewImage:
		return "preview image"
	case FieldDetailImage:
		return "modal image"
	default:
		return string(f)
	}
}

type PromoCount struct {
	ID    int64 `json:"id"`
	Count int64 `json:"count"`
}

type TitleCount struct {
	Title string
	Count int64
}

type DailyStats struct {
	NewUsers  int64
	Redirects []TitleCount
}
