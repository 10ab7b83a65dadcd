package types

import "time"

// Tenant is one account owner's namespace. Subdomain is unique across all
// tenants (compared case-insensitively) and immutable once set.
type Tenant struct {
	ID          string          `json:"id"`
	Subdomain   string          `json:"subdomain"`
	DisplayName string          `json:"displayName"`
	OwnerID     string          `json:"ownerId"`
	CreatedAt   time.Time       `json:"createdAt"`
	Description string          `json:"description,omitempty"`
	Branding    *TenantBranding `json:"branding,omitempty"`
}

// TenantBranding is cosmetic homepage customization. The directory stores
// it verbatim and attaches no meaning to any field.
type TenantBranding struct {
	CoverImage     string `json:"coverImage,omitempty"`
	LogoImage      string `json:"logoImage,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	TextColor      string `json:"textColor,omitempty"`
	Tagline        string `json:"tagline,omitempty"`
	FooterText     string `json:"footerText,omitempty"`
}

// EntityID returns the tenant id.
func (t Tenant) EntityID() string { return t.ID }

// TenantUpdate carries a partial profile edit. Nil fields are left as they
// are.
type TenantUpdate struct {
	DisplayName *string         `json:"displayName,omitempty"`
	Description *string         `json:"description,omitempty"`
	Branding    *TenantBranding `json:"branding,omitempty"`
}
