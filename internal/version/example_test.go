package version_test

import (
	"fmt"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/version"
)

func ExampleCompare() {
	a := version.MustParse("1.0.0-alpha.1")
	b := version.MustParse("1.0.0-alpha.beta")
	fmt.Println(version.Compare(a, b))
	fmt.Println(version.Compare(version.MustParse("1.0.0+build1"), version.MustParse("1.0.0+build2")))
	// Output:
	// -1
	// 0
}

func ExampleBump() {
	v := version.MustParse("1.2.3-rc.1")

	next, _ := version.Bump(v, version.PreRelease(""))
	fmt.Println(next)

	major, _ := v.Bump(version.Major())
	fmt.Println(major)
	// Output:
	// 1.2.3-rc.2
	// 2.0.0
}
