package config

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type (
	DB struct {
		URL string `envconfig:"DB_URL" required:"true"`
	}

	CORS struct {
		AllowOrigins []string `envconfig:"ALLOW_ORIGINS" required:"true"`
	}

	JWT struct {
		Issuer   string   `envconfig:"ISSUER" default:"vocalearn-api"`
		Audience []string `envconfig:"AUDIENCE" required:"true"`
		Secret   string   `envconfig:"SECRET"`
		// SecretSSMKey, when set, overrides Secret with the value of the AWS
		// SSM parameter of that name.
		SecretSSMKey string `envconfig:"SECRET_SSM_KEY"`
	}

	Cookie struct {
		Path            string        `envconfig:"CPATH" default:"/"` // not using PATH here because it may conflict with os.Path
		Domain          string        `envconfig:"DOMAIN" required:"true"`
		AccessExpiresIn time.Duration `envconfig:"ACCESS_EXPIRES_IN" default:"24h"`
	}

	HTTP struct {
		ProcessTimeout time.Duration `envconfig:"PROCESS_TIMEOUT" default:"10s"`
		RateLimit      float64       `envconfig:"RATE_LIMIT" default:"25"`
		CORS           CORS
		Cookie         Cookie
		JWT            JWT
	}

	Server struct {
		ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"10s"`
		Addr              string        `envconfig:"ADDR" default:":8080"`
	}

	// Learning holds the "learnt word" thresholds of the dashboard. Kept as
	// configuration so deployments can tune them without a rebuild.
	Learning struct {
		MinReviewCount int     `envconfig:"MIN_REVIEW_COUNT" default:"3"`
		MinPassRate    float64 `envconfig:"MIN_PASS_RATE" default:"0.6"`
	}

	API struct {
		Dev      bool `envconfig:"DEV" default:"false"`
		DB       DB
		HTTP     HTTP
		Server   Server
		Learning Learning
	}
)

func NewAPI(ctx context.Context) (*API, error) {
	var res API
	if err := envconfig.Process("API", &res); err != nil {
		return nil, fmt.Errorf("parse api environment: %w", err)
	}

	if res.HTTP.JWT.SecretSSMKey != "" {
		params, err := FetchAWSParams(ctx, res.HTTP.JWT.SecretSSMKey)
		if err != nil {
			return nil, fmt.Errorf("fetch jwt secret: %w", err)
		}
		res.HTTP.JWT.Secret = params[res.HTTP.JWT.SecretSSMKey]
	}

	if res.HTTP.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	return &res, nil
}
