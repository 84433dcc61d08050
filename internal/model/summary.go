package model

import "fmt"

// Summary holds one aggregated text per entity type plus the document
// metadata it was built from.
type Summary struct {
	ID                  string `json:"id"`
	UserID              string `json:"userId"`
	Email               string `json:"email"`
	CaseNumber          string `json:"caseNumber"`
	EntityID            int    `json:"entityId"`
	DocumentTypeID      int    `json:"documentTypeId"`
	DocumentTypeName    string `json:"documentTypeName"`
	AttachmentID        int    `json:"attachmentId"`
	ExtractedPages      []int  `json:"extractedPages"`
	IsGold              bool   `json:"isGold"`
	IsManuallyAdnotated bool   `json:"isManuallyAdnotated"`
	LastSaved           string `json:"lastSaved"`

	Temei     string `json:"Temei"`
	Proba     string `json:"Proba"`
	Selected  string `json:"Selected"`
	Cerere    string `json:"Cerere"`
	Reclamant string `json:"Reclamant"`
	Parat     string `json:"Parat"`

	Warnings []string `json:"warnings,omitempty"`
}

// NewSummary copies the metadata of d into an empty summary
func NewSummary(d *Document) *Summary {
	return &Summary{
		ID:                  d.ID,
		UserID:              d.UserID,
		Email:               d.Email,
		CaseNumber:          d.CaseNumber,
		EntityID:            d.EntityID,
		DocumentTypeID:      d.DocumentTypeID,
		DocumentTypeName:    d.DocumentTypeName,
		AttachmentID:        d.AttachmentID,
		ExtractedPages:      cloneSlice(d.ExtractedPages),
		IsGold:              d.IsGold,
		IsManuallyAdnotated: d.IsManuallyAdnotated,
		LastSaved:           d.LastSaved,
	}
}

// Field returns the summary text stored for entity type e
func (s *Summary) Field(e EntityType) (string, error) {
	p, err := s.fieldPtr(e)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// SetField stores text for entity type e
func (s *Summary) SetField(e EntityType, text string) error {
	p, err := s.fieldPtr(e)
	if err != nil {
		return err
	}
	*p = text
	return nil
}

func (s *Summary) fieldPtr(e EntityType) (*string, error) {
	switch e {
	case EntityTemei:
		return &s.Temei, nil
	case EntityProba:
		return &s.Proba, nil
	case EntitySelected:
		return &s.Selected, nil
	case EntityCerere:
		return &s.Cerere, nil
	case EntityReclamant:
		return &s.Reclamant, nil
	case EntityParat:
		return &s.Parat, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, string(e))
	}
}
