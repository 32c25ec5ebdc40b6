package config

type App struct {
	Port         string `env:"APP_PORT" default:"8080"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	JWTSecret    string `env:"JWT_SECRET,required"`
	StripeAPIKey string `env:"STRIPE_API_KEY"`
	ClientOrigin string `env:"CLIENT_ORIGIN" default:"http://localhost:5173"`
	KafkaBrokers string `env:"KAFKA_BROKERS"`
	Env          string `env:"APP_ENV" default:"dev"`
}
