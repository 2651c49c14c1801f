package crm

import "strings"

// Fields is the CRM view of a contact. Dates are yyyy-mm-dd strings. Empty
// values are never sent, so an update cannot erase what is already stored.
type Fields struct {
	Name      string
	Email     string
	Phone     string
	TaxID     string
	Plan      string
	Duration  string
	StartDate string
	EndDate   string
	BirthDate string
	Address   string
}

// Contact is a page found in or written to the CRM.
type Contact struct {
	PageID string
	Name   string
	Email  string
}

// Properties renders the non-empty fields as Notion page properties.
func (f Fields) Properties() map[string]interface{} {
	props := make(map[string]interface{})

	if v := strings.TrimSpace(f.Name); v != "" {
		props[PropName] = map[string]interface{}{"title": richText(v)}
	}
	if v := strings.TrimSpace(f.Email); v != "" {
		props[PropEmail] = map[string]interface{}{"email": v}
	}
	if v := strings.TrimSpace(f.Phone); v != "" {
		props[PropPhone] = map[string]interface{}{"phone_number": v}
	}
	if v := strings.TrimSpace(f.TaxID); v != "" {
		props[PropTaxID] = map[string]interface{}{"rich_text": richText(v)}
	}
	if v := strings.TrimSpace(f.Plan); v != "" {
		props[PropPlan] = map[string]interface{}{"select": map[string]string{"name": v}}
	}
	if v := strings.TrimSpace(f.Duration); v != "" {
		props[PropDuration] = map[string]interface{}{"select": map[string]string{"name": v}}
	}
	if v := strings.TrimSpace(f.StartDate); v != "" {
		props[PropStartDate] = dateProp(v)
	}
	if v := strings.TrimSpace(f.EndDate); v != "" {
		props[PropEndDate] = dateProp(v)
	}
	if v := strings.TrimSpace(f.BirthDate); v != "" {
		props[PropBirthDate] = dateProp(v)
	}
	if v := strings.TrimSpace(f.Address); v != "" {
		props[PropAddress] = map[string]interface{}{"rich_text": richText(v)}
	}

	return props
}

func richText(s string) []map[string]interface{} {
	return []map[string]interface{}{
		{"type": "text", "text": map[string]string{"content": s}},
	}
}

func dateProp(s string) map[string]interface{} {
	return map[string]interface{}{"date": map[string]string{"start": s}}
}

type page struct {
	ID         string `json:"id"`
	Properties map[string]struct {
		Type  string `json:"type"`
		Email string `json:"email"`
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
	} `json:"properties"`
}

func (p page) contact() Contact {
	c := Contact{PageID: p.ID}
	if prop, ok := p.Properties[PropEmail]; ok {
		c.Email = prop.Email
	}
	if prop, ok := p.Properties[PropName]; ok {
		var b strings.Builder
		for _, t := range prop.Title {
			b.WriteString(t.PlainText)
		}
		c.Name = b.String()
	}
	return c
}
