package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/NeuralTrust/ConsensusSentry/pkg/version.Version=...".
var (
	Version   = "0.3.0"
	AppName   = "ConsensusSentry"
	Commit    = "none"
	BuildDate = "unknown"
)

type Info struct {
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// UserAgent identifies the registry on outbound calls.
func UserAgent() string {
	return AppName + "/" + Version
}
