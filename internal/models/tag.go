package models

import (
	"bytes"
	"encoding/json"
)

// Tag labels blogs; names are unique
type Tag struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	ColorCode   *string `json:"color_code,omitempty" db:"color_code"`
}

// TagDTO is the tag shape embedded in blog list items
type TagDTO struct {
	UUID      string  `json:"uuid"`
	Name      string  `json:"name"`
	ColorCode *string `json:"color_code"`
}

// TagDetailDTO is returned by the tag listing
type TagDetailDTO struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ColorCode   *string `json:"color_code"`
}

// ToDTO converts a tag for blog responses
func (t Tag) ToDTO() TagDTO {
	return TagDTO{UUID: t.ID, Name: t.Name, ColorCode: t.ColorCode}
}

// ToDetailDTO converts a tag for the tag listing
func (t Tag) ToDetailDTO() TagDetailDTO {
	return TagDetailDTO{UUID: t.ID, Name: t.Name, Description: t.Description, ColorCode: t.ColorCode}
}

// TagNDJSON is a tag reference inside an imported blog record. It accepts
// either a bare name string or an object.
type TagNDJSON struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ColorCode   string `json:"color_code,omitempty"`
}

// UnmarshalJSON accepts "Go" as shorthand for {"name": "Go"}
func (t *TagNDJSON) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		*t = TagNDJSON{}
		return json.Unmarshal(trimmed, &t.Name)
	}
	type plain TagNDJSON
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = TagNDJSON(p)
	return nil
}
