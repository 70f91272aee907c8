package display

import (
	"context"
	"testing"
)

type runnerFake struct {
	out []byte
	err error
}

func (f *runnerFake) Output(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return f.out, f.err
}

const profilerJSON = `{
  "SPDisplaysDataType": [
    {
      "spdisplays_ndrvs": [
        {
          "_name": "Built-in Liquid Retina XDR Display",
          "_spdisplays_pixels": "3024 x 1964",
          "_spdisplays_resolution": "1512 x 982 @ 120.00Hz",
          "spdisplays_main": "spdisplays_yes",
          "spdisplays_connection_type": "spdisplays_internal"
        },
        {
          "_name": "DELL U2720Q",
          "_spdisplays_pixels": "3840 x 2160",
          "_spdisplays_resolution": "3840 x 2160 @ 60.00Hz",
          "spdisplays_connection_type": "spdisplays_displayport_dongletype_dp"
        }
      ]
    }
  ]
}`

func TestProfilerListerParsesReport(t *testing.T) {
	l := &ProfilerLister{Runner: &runnerFake{out: []byte(profilerJSON)}}

	displays, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(displays) != 2 {
		t.Fatalf("len(displays) = %d, want 2", len(displays))
	}

	main := displays[0]
	if !main.IsMain || !main.IsBuiltIn {
		t.Errorf("first display should be main and built-in: %+v", main)
	}
	if main.Bounds.Width != 3024 || main.Bounds.Height != 1964 {
		t.Errorf("main bounds = %+v", main.Bounds)
	}
	if main.RefreshRate != 120 {
		t.Errorf("main refresh = %v, want 120", main.RefreshRate)
	}

	ext := displays[1]
	if ext.IsMain || ext.IsBuiltIn {
		t.Errorf("external display misdetected: %+v", ext)
	}
	if ext.Name != "DELL U2720Q" || ext.RefreshRate != 60 {
		t.Errorf("external display = %+v", ext)
	}
}

func TestFrame(t *testing.T) {
	displays := []Display{
		{Index: 0, Bounds: Rect{Width: 1920, Height: 1080}, IsMain: true},
		{Index: 1, Bounds: Rect{X: 1920, Width: 1280, Height: 720}},
	}

	tests := []struct {
		selector string
		want     Rect
		wantErr  bool
	}{
		{"main", Rect{Width: 1920, Height: 1080}, false},
		{"", Rect{Width: 1920, Height: 1080}, false},
		{"1", Rect{X: 1920, Width: 1280, Height: 720}, false},
		{"all", Rect{Width: 3200, Height: 1080}, false},
		{"7", Rect{}, true},
		{"left-ish", Rect{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := Frame(displays, tt.selector)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Frame(%q) error = %v, wantErr %v", tt.selector, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Frame(%q) = %+v, want %+v", tt.selector, got, tt.want)
			}
		})
	}
}

func TestListNoDisplays(t *testing.T) {
	l := &ProfilerLister{Runner: &runnerFake{out: []byte(`{"SPDisplaysDataType": []}`)}}
	if _, err := l.List(context.Background()); err == nil {
		t.Error("List() should fail when no displays are reported")
	}
}
