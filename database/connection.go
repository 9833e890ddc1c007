package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Connect opens the PostgreSQL connection. On Cloud Run the Cloud SQL proxy
// mounts a unix socket under /cloudsql keyed by INSTANCE_CONNECTION_NAME;
// without it the DSN is built from DB_HOST/DB_PORT for local or container
// setups.
func Connect() {
	user := envOr("DB_USER", "postgres")
	pass := os.Getenv("DB_PASS")
	name := envOr("DB_NAME", "urbanmistri")

	var dsn string
	if instance := os.Getenv("INSTANCE_CONNECTION_NAME"); instance != "" {
		dsn = fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			instance, user, pass, name)
		log.Printf("🔌 Connecting through Cloud SQL socket %s", instance)
	} else {
		host := envOr("DB_HOST", "localhost")
		port := envOr("DB_PORT", "5432")
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			host, user, pass, name, port)
		log.Printf("🔌 Connecting to PostgreSQL at %s:%s", host, port)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		panic(err)
	}

	log.Println("✅ Database connected")
}
