package config

import (
	"os"
)

type Config struct {
	Port               string
	Environment        string
	BaseURL            string
	TemplatePath       string
	AssetsDir          string
	OutputDir          string
	PassTypeIdentifier string
	TeamIdentifier     string
	OrganizationName   string
	PassCertPath       string
	PassCertPassword   string
	WWDRCertPath       string
	WebhookURL         string
	WebhookSecret      string
	APNsKeyPath        string
	APNsKeyID          string
	APNsTeamID         string
	APNsGateway        string
}

func NewConfig() *Config {
	return &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Environment:        getEnvOrDefault("ENVIRONMENT", "development"),
		BaseURL:            getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		TemplatePath:       getEnvOrDefault("TEMPLATE_PATH", "templates/pass.json"),
		AssetsDir:          getEnvOrDefault("ASSETS_DIR", "assets"),
		OutputDir:          getEnvOrDefault("OUTPUT_DIR", "public/passes"),
		PassTypeIdentifier: getEnvOrDefault("PASS_TYPE_IDENTIFIER", "pass.com.appointpass.appointment"),
		TeamIdentifier:     getEnvOrDefault("TEAM_IDENTIFIER", "A1B2C3D4E5"),
		OrganizationName:   getEnvOrDefault("ORGANIZATION_NAME", "AppointPass"),
		PassCertPath:       getEnvOrDefault("PASS_CERT_PATH", "certs/pass.p12"),
		PassCertPassword:   os.Getenv("PASS_CERT_PASSWORD"),
		WWDRCertPath:       getEnvOrDefault("WWDR_CERT_PATH", "certs/wwdr.pem"),
		WebhookURL:         os.Getenv("WEBHOOK_URL"),
		WebhookSecret:      os.Getenv("WEBHOOK_SECRET"),
		APNsKeyPath:        getEnvOrDefault("APNS_KEY_PATH", "certs/apns.p8"),
		APNsKeyID:          os.Getenv("APNS_KEY_ID"),
		APNsTeamID:         getEnvOrDefault("APNS_TEAM_ID", getEnvOrDefault("TEAM_IDENTIFIER", "A1B2C3D4E5")),
		APNsGateway:        getEnvOrDefault("APNS_GATEWAY", "https://api.push.apple.com"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
