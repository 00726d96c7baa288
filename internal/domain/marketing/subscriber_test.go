package marketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_Normalize(t *testing.T) {
	s, err := Signup{Email: " Fan@Example.COM", FirstName: " Jo "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", s.Email)
	assert.Equal(t, "Jo", s.FirstName)
	assert.Equal(t, DefaultSource, s.Source)
	assert.Equal(t, []string{"newsletter-footer", "lead-nurture", "email-marketing"}, s.Tags())

	tests := []struct {
		name string
		in   Signup
		msg  string
	}{
		{"missing email", Signup{FirstName: "Jo"}, "Email is required"},
		{"missing name", Signup{Email: "a@b.co"}, "First name is required"},
		{"bad email", Signup{Email: "a@b", FirstName: "Jo"}, "Invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Normalize()
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestSubscriber_Resubscribe(t *testing.T) {
	now := time.Now()
	s, _ := Signup{Email: "a@b.co", FirstName: "Jo", Source: "modal"}.Normalize()
	sub := NewSubscriber(s, now)
	assert.False(t, sub.Resubscribe(s, now))

	sub.Unsubscribe(now)
	assert.Equal(t, SubscriberUnsubscribed, sub.Status)
	s.Source = "blog"
	assert.True(t, sub.Resubscribe(s, now.Add(time.Hour)))
	assert.Equal(t, SubscriberActive, sub.Status)
	assert.Equal(t, "blog", sub.Source)
	assert.Nil(t, sub.UnsubscribedAt)
}
