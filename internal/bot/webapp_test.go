package bot

import (
	"testing"

	"github.com/example/fitgram/internal/host"
)

func TestChatBackButton(t *testing.T) {
	h := host.NewBackHandler(func() {})
	other := host.NewBackHandler(func() {})

	tests := []struct {
		name string
		act  func(b *chatBackButton)
		want bool
	}{
		{"shown without handler", func(b *chatBackButton) { b.Show() }, false},
		{"shown with handler", func(b *chatBackButton) { b.Show(); b.OnClick(h) }, true},
		{"hidden with handler", func(b *chatBackButton) { b.OnClick(h); b.Hide() }, false},
		{"foreign handler removed", func(b *chatBackButton) { b.Show(); b.OnClick(h); b.OffClick(other) }, true},
		{"own handler removed", func(b *chatBackButton) { b.Show(); b.OnClick(h); b.OffClick(h) }, false},
		{"nil removal", func(b *chatBackButton) { b.Show(); b.OnClick(h); b.OffClick(nil) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b chatBackButton
			tt.act(&b)
			if got := b.Visible(); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}
