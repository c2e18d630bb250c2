// internal/app/features/organizations/types.go
package organizations

import "github.com/flowdesk/flowdesk/internal/domain/models"

type createRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Plan string `json:"plan"`
}

type updateRequest struct {
	Name    *string `json:"name"`
	LogoURL *string `json:"logo_url"`
	Plan    *string `json:"plan"`
}

type orgResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	LogoURL string `json:"logo_url,omitempty"`
	Plan    string `json:"plan"`
}

// listItem is one row of GET /orgs: the org plus the caller's role in it.
type listItem struct {
	orgResponse
	Role string `json:"role"`
}

func toOrgResponse(org models.Organization) orgResponse {
	return orgResponse{
		ID:      org.ID.Hex(),
		Name:    org.Name,
		Slug:    org.Slug,
		LogoURL: org.LogoURL,
		Plan:    org.Plan,
	}
}
