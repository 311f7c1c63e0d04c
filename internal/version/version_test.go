package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColored(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	t.Cleanup(func() {
		Version = orig
		color.NoColor = origNoColor
	})
	color.NoColor = true

	cases := []struct {
		version string
		want    string
	}{
		{version: "1.2.3", want: "1.2.3"},
		{version: "0.3.0-dev", want: "0.3.0-dev"},
		{version: "1.0.0-rc.1+build.7", want: "1.0.0-rc.1+build.7"},
		{version: "nightly", want: "nightly"},
	}
	for _, tc := range cases {
		Version = tc.version
		if got := Colored(); got != tc.want {
			t.Fatalf("Colored() for %q = %q, want %q", tc.version, got, tc.want)
		}
	}
}

func TestColoredHighlightsComponents(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })
	Version = "1.2.3-dev"

	majorColor.EnableColor()
	t.Cleanup(majorColor.DisableColor)
	if got := Colored(); got == Version {
		t.Fatal("expected escape codes around the major component")
	}
}
