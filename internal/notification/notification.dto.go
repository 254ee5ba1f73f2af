package notification

import "strings"

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Validate normalises the platform and reports what is missing.
func (r *RegisterDeviceRequest) Validate() string {
	r.Token = strings.TrimSpace(r.Token)
	r.Platform = strings.ToLower(strings.TrimSpace(r.Platform))
	if r.Token == "" {
		return "token is required"
	}
	switch r.Platform {
	case "ios", "android", "web":
		return ""
	case "":
		return "platform is required"
	}
	return "platform must be one of ios, android, web"
}
