package config

import "testing"

func TestConfig_validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "zero value rejected",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "valid minimal config",
			config: Config{
				DefaultPort:         15702,
				RequestTimeout:      1,
				RecursionDepthLimit: 10,
			},
		},
		{
			name: "port out of range",
			config: Config{
				DefaultPort:         70000,
				RequestTimeout:      1,
				RecursionDepthLimit: 10,
			},
			wantErr: true,
		},
		{
			name: "zero recursion limit rejected",
			config: Config{
				DefaultPort:    15702,
				RequestTimeout: 1,
			},
			wantErr: true,
		},
		{
			name: "missing watch log dir falls back to os temp dir",
			config: Config{
				DefaultPort:         15702,
				RequestTimeout:      1,
				RecursionDepthLimit: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if tt.config.WatchLogDir == "" {
				t.Fatal("expected WatchLogDir to be defaulted")
			}
		})
	}
}
