package artifact

import (
	"context"
	"fmt"
	"os"

	fsdriver "psephos/internal/infra/artifact/fs"
	memdriver "psephos/internal/infra/artifact/memory"
	s3driver "psephos/internal/infra/artifact/s3"
)

// Open selects a Store implementation using environment variables.
//
//	PSEPHOS_ARTIFACT_DRIVER: fs|s3|memory (default fs)
//	PSEPHOS_ARTIFACT_FS_ROOT: directory root when driver=fs (default ./artifacts)
//	(S3 specific variables documented in the s3 driver)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("PSEPHOS_ARTIFACT_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return fsdriver.New(os.Getenv("PSEPHOS_ARTIFACT_FS_ROOT"))
	case DriverS3:
		return s3driver.OpenFromEnv(ctx)
	case DriverMemory:
		return memdriver.New(), nil
	default:
		return nil, fmt.Errorf("unknown artifact driver %s", driver)
	}
}
