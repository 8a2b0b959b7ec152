package auth

// OAuth scopes requested for the service-account token used by admin calls.
const (
	ScopeIdentityToolkit = "https://www.googleapis.com/auth/identitytoolkit"
	ScopeCloudPlatform   = "https://www.googleapis.com/auth/cloud-platform"
	ScopeUserinfoEmail   = "https://www.googleapis.com/auth/userinfo.email"
)

// AdminScopes is the full set requested for account management.
var AdminScopes = []string{
	ScopeIdentityToolkit,
	ScopeCloudPlatform,
	ScopeUserinfoEmail,
}

// Public endpoints of the identity service.
const (
	DefaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"
	DefaultJWKSURL         = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	issuerPrefix           = "https://securetoken.google.com/"
)
