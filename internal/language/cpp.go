package language

func init() {
	Register(Profile{
		Name:      "cpp",
		Image:     "gcc:13",
		Extension: "cpp",
		CompileCommand: []string{
			"g++",
			"code.cpp",
			"-O2",
			"-o",
			"a.out",
		},
		RunCommand: []string{
			"./a.out",
		},
	})
}
