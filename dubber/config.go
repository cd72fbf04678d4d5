package dubber

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/dubbing/pkg/common"
)

type DubberConfig struct {
	Addr string
	Port string

	// Storage: S3 bucket, or a local directory when StorageDir is set
	Bucket     string
	StorageDir string

	// Credentials for the speech service
	RoleARN      string
	SecretName   string
	SecretRegion string

	// PublicHost is the load balancer name clients reach us on
	PublicHost string

	AllowOrigins []string

	Debug bool
}

// LoadEnv reads an optional .env file into the process environment.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	} else {
		log.Info("Loaded environment variables from .env file")
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// NewServeDubberConfig creates a DubberConfig from flags; empty values fall
// back to the environment.
func NewServeDubberConfig(addr, port, bucket, storageDir, roleARN string,
	origins []string, debug bool) *DubberConfig {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &DubberConfig{
		Addr:         addr,
		Port:         port,
		Bucket:       firstNonEmpty(bucket, os.Getenv("S3_BUCKET_NAME")),
		StorageDir:   firstNonEmpty(storageDir, os.Getenv("DUBBER_STORAGE_DIR")),
		RoleARN:      firstNonEmpty(roleARN, os.Getenv("IAM_ROLE_ARN")),
		SecretName:   getEnv("AZURE_SECRET_NAME", common.DefaultSecretName),
		SecretRegion: getEnv("AZURE_SECRET_REGION", common.DefaultSecretRegion),
		PublicHost:   os.Getenv("ALB_DNS_NAME"),
		AllowOrigins: origins,
		Debug:        debug,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *DubberConfig) Validate() error {
	if c.Bucket == "" && c.StorageDir == "" {
		return fmt.Errorf("error: one of S3_BUCKET_NAME or DUBBER_STORAGE_DIR must be set")
	}
	if c.Port == "" {
		return fmt.Errorf("error: port is not set")
	}
	return nil
}

func (c *DubberConfig) Log() {
	log.Infof("S3_BUCKET_NAME: %s", c.Bucket)
	log.Infof("DUBBER_STORAGE_DIR: %s", c.StorageDir)
	log.Infof("IAM_ROLE_ARN: %s", c.RoleARN)
	log.Infof("ALB_DNS_NAME: %s", c.PublicHost)
	log.Infof("Allowed origins: %s", strings.Join(c.AllowOrigins, ","))
}
