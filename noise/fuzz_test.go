package noise

import "testing"

// FuzzProcessServerResponse feeds arbitrary server hellos to a client that
// has sent its init message.
func FuzzProcessServerResponse(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, 31))
	f.Add(make([]byte, 32))
	f.Add(make([]byte, 64))

	f.Fuzz(func(t *testing.T, resp []byte) {
		client := NewClient(ClientConfig{})
		if _, err := client.Init(); err != nil {
			t.Fatal(err)
		}
		if err := client.ProcessServerResponse(resp); err != nil {
			return
		}
		if _, err := client.Finish(); err != nil {
			t.Fatalf("finish after accepted response: %v", err)
		}
	})
}
