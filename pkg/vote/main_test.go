package vote

import (
	"os"
	"testing"

	"github.com/framefest/platform/pkg/common/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
