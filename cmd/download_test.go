package cmd

import "testing"

func TestCSVFileName(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "plain csv path",
			url:  "https://data.example.gov/exports/permits.csv",
			want: "permits.csv",
		},
		{
			name: "appends csv extension",
			url:  "https://data.example.gov/api/views/permits/rows",
			want: "rows.csv",
		},
		{
			name: "uppercase extension kept",
			url:  "https://data.example.gov/PERMITS.CSV",
			want: "PERMITS.CSV",
		},
		{
			name:    "no path",
			url:     "https://data.example.gov",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			url:     "ftp://data.example.gov/permits.csv",
			wantErr: true,
		},
		{
			name:    "relative url",
			url:     "permits.csv",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := csvFileName(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("csvFileName(%q) = %q, want error", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("csvFileName(%q): %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("csvFileName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
