package language

func init() {
	Register(Profile{
		Name:      "go",
		Image:     "golang:1.23-alpine",
		Extension: "go",

		// The rootfs is read-only, so the toolchain's build cache and
		// HOME must live on the writable workspace mount.
		Env: []string{
			"GOCACHE=/workspace/.gocache",
			"GOPATH=/workspace/.go",
			"HOME=/workspace",
		},
		CompileCommand: []string{
			"go",
			"build",
			"-o",
			"app",
			"code.go",
		},
		RunCommand: []string{
			"./app",
		},
	})
}
