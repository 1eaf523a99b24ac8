package models

// Contact is one lead resolved from the lead database, projected down to
// the allow-listed fields the rest of the pipeline needs.
type Contact struct {
	Name             string `json:"name"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Email            string `json:"email"`
	Title            string `json:"title,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	Country          string `json:"country,omitempty"`
	LinkedinURL      string `json:"linkedin_url,omitempty"`
}
