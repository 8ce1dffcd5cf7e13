package v1alpha1

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeCertificateProperties(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want CertificateProperties
	}{
		{
			name: "all fields",
			raw: map[string]interface{}{
				"DomainName":        "example.com",
				"AlternativeNames":  []interface{}{"www.example.com"},
				"HostedZone":        "Z123",
				"UpdateNameservers": "true",
			},
			want: CertificateProperties{
				DomainName:        "example.com",
				AlternativeNames:  []string{"www.example.com"},
				HostedZone:        "Z123",
				UpdateNameservers: true,
			},
		},
		{
			name: "no alternative names",
			raw: map[string]interface{}{
				"DomainName": "example.com",
				"HostedZone": "Z123",
			},
			want: CertificateProperties{DomainName: "example.com", HostedZone: "Z123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CertificateProperties
			if err := Decode(tt.raw, &got); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_InvalidShape(t *testing.T) {
	var got CertificateProperties
	if err := Decode("example.com", &got); err == nil {
		t.Error("expected error decoding a plain string into CertificateProperties")
	}
}

func TestCertificateProperties_Validate(t *testing.T) {
	tests := []struct {
		name    string
		props   CertificateProperties
		wantErr bool
	}{
		{
			name:  "valid",
			props: CertificateProperties{DomainName: "example.com", HostedZone: "Z123"},
		},
		{
			name:    "missing domain name",
			props:   CertificateProperties{HostedZone: "Z123"},
			wantErr: true,
		},
		{
			name:    "missing hosted zone",
			props:   CertificateProperties{DomainName: "example.com"},
			wantErr: true,
		},
		{
			name:    "blank alternative name",
			props:   CertificateProperties{DomainName: "example.com", HostedZone: "Z123", AlternativeNames: []string{" "}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.props.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNameserverProperties_Validate(t *testing.T) {
	if err := (&NameserverProperties{}).Validate(); err == nil {
		t.Error("expected error for empty hosted zone")
	}
	if err := (&NameserverProperties{HostedZone: "Z123"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestCertificateProperties_DomainNames(t *testing.T) {
	props := CertificateProperties{DomainName: "example.com", AlternativeNames: []string{"www.example.com"}}
	want := []string{"example.com", "www.example.com"}
	if diff := cmp.Diff(want, props.DomainNames()); diff != "" {
		t.Errorf("DomainNames() mismatch (-want +got):\n%s", diff)
	}
}
