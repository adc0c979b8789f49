package domain

// MFAEnrollment is returned exactly once, when 2FA is enabled. The secret is
// never re-exposed after this response.
type MFAEnrollment struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}
