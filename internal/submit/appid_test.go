package submit

import "testing"

func TestDeriveAppID(t *testing.T) {
	cases := []struct {
		name     string
		appName  string
		millis   int64
		expected string
	}{
		{name: "simple", appName: "MyApp", millis: 1700000000000, expected: "myapp-1700000000000"},
		{name: "dots replaced", appName: "my.nested.app", millis: 1, expected: "my-nested-app-1"},
		{name: "already lowercase", appName: "wordcount", millis: 42, expected: "wordcount-42"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveAppID(tc.appName, tc.millis)
			if got != tc.expected {
				t.Errorf("DeriveAppID(%q, %d) = %q, want %q", tc.appName, tc.millis, got, tc.expected)
			}
		})
	}
}

func TestResourceNames_ShareAppID(t *testing.T) {
	appID := "myapp-1700000000000"
	if SecretName(appID) != submissionAppSecretNamePrefix+appID {
		t.Errorf("unexpected secret name: %s", SecretName(appID))
	}
	if ServiceName(appID) != appID || PodName(appID) != appID || IngressName(appID) != appID {
		t.Error("service/pod/ingress names must equal the AppId")
	}
}
