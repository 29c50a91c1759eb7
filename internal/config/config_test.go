package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	type args struct {
		args []string
	}
	tests := []struct {
		name    string
		args    args
		want    Config
		wantErr error
	}{
		{
			name: "Defaults",
			args: args{
				args: []string{"src"},
			},
			want: Config{
				WatchPaths: []string{"src"},
				Includes:   []string{"*.py"},
				ProcRoot:   "/proc",
				Wait:       500 * time.Millisecond,
			},
		},
		{
			name: "All options",
			args: args{
				args: []string{"-a", "site-a", "-p", "/run/gunicorn.pid", "-w", "1000", "-v", "src", "lib"},
			},
			want: Config{
				WatchPaths: []string{"src", "lib"},
				Includes:   []string{"*.py"},
				AppName:    "site-a",
				PidFile:    "/run/gunicorn.pid",
				ProcRoot:   "/proc",
				Wait:       time.Second,
				Verbose:    true,
			},
		},
		{
			name: "Wait is clamped",
			args: args{
				args: []string{"-w", "5", "-q", "src"},
			},
			want: Config{
				WatchPaths: []string{"src"},
				Includes:   []string{"*.py"},
				ProcRoot:   "/proc",
				Wait:       20 * time.Millisecond,
				Quiet:      true,
			},
		},
		{
			name: "Includes",
			args: args{
				args: []string{"--include", "*.py", "--include", "*.html", "--proc", "/host/proc", "src"},
			},
			want: Config{
				WatchPaths: []string{"src"},
				Includes:   []string{"*.py", "*.html"},
				ProcRoot:   "/host/proc",
				Wait:       500 * time.Millisecond,
			},
		},
		{
			name: "Verbose and quiet",
			args: args{
				args: []string{"-v", "-q", "src"},
			},
			wantErr: ErrValidationFailed,
		},
		{
			name: "Invalid include",
			args: args{
				args: []string{"--include", "[a-", "src"},
			},
			wantErr: ErrValidationFailed,
		},
		{
			name: "Help",
			args: args{
				args: []string{"-h"},
			},
			wantErr: ErrHelpShown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(tt.args.args, io.Discard)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("parse() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("parse() error = %v", err)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parse() = %+#v, want %+#v", got, tt.want)
			}
		})
	}
}

func TestParseUnknownFlag(t *testing.T) {
	if _, err := parse([]string{"--dest", "ftp://example.com"}, io.Discard); err == nil {
		t.Error("parse() error = nil, want error")
	}
}

func TestSearchPath(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	file := filepath.Join(dir, "file.py")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PYTHONPATH", strings.Join([]string{dir, missing, file, "", dir}, string(os.PathListSeparator)))

	want := []string{".", dir}
	if got := searchPath(); !reflect.DeepEqual(got, want) {
		t.Errorf("searchPath() = %v, want %v", got, want)
	}
}
