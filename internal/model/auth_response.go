package model

// TokenSetter is implemented by every login or register response
type TokenSetter interface {
	SetAccessToken(accessToken string)
}

// StudentResponse struct holds the response data for student login or registration
type StudentResponse struct {
	User        StudentProfile `json:"user"`
	AccessToken string         `json:"access_token"`
}

// SetAccessToken sets the access token in the StudentResponse
func (r *StudentResponse) SetAccessToken(accessToken string) {
	r.AccessToken = accessToken
}

// InstitutionResponse struct holds the response data for institution login or registration
type InstitutionResponse struct {
	User        Institution `json:"user"`
	AccessToken string      `json:"access_token"`
}

// SetAccessToken sets the access token in the InstitutionResponse
func (r *InstitutionResponse) SetAccessToken(accessToken string) {
	r.AccessToken = accessToken
}

// CompanyResponse struct holds the response data for company login or registration
type CompanyResponse struct {
	User        Company `json:"user"`
	AccessToken string  `json:"access_token"`
}

// SetAccessToken sets the access token in the CompanyResponse
func (r *CompanyResponse) SetAccessToken(accessToken string) {
	r.AccessToken = accessToken
}

// AdminResponse struct holds the response data for admin login
type AdminResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// SetAccessToken sets the access token in the AdminResponse
func (r *AdminResponse) SetAccessToken(accessToken string) {
	r.AccessToken = accessToken
}
