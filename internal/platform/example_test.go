package platform_test

import (
	"fmt"

	"github.com/traiproject/setup-same/internal/platform"
)

func ExampleDetect() {
	desc, err := platform.Detect(platform.HostInfo{OS: "darwin", Arch: "arm64"})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(desc.Tag())
	// Output: macOS_arm64
}

func ExampleDetect_windows() {
	_, err := platform.Detect(platform.HostInfo{OS: "win32", Arch: "x64"})
	fmt.Println(err)
	// Output: Windows is not supported
}
