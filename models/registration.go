package models

// RegisterDeviceRequest is the body of the wallet registration callback.
type RegisterDeviceRequest struct {
	PushToken string `json:"pushToken"`
}

// DeviceRegistration is the normalized record forwarded to the registration
// webhook.
type DeviceRegistration struct {
	SerialNumber            string `json:"serialNumber"`
	DeviceLibraryIdentifier string `json:"deviceLibraryIdentifier"`
	PushToken               string `json:"pushToken"`
}

type PushUpdateRequest struct {
	PushToken string `json:"pushToken" binding:"required"`
}
