package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSESNotification_Kind(t *testing.T) {
	tests := []struct {
		name string
		body string
		want FeedbackKind
		rcpt []string
	}{
		{
			name: "permanent bounce",
			body: `{"notificationType":"Bounce","bounce":{"bounceType":"Permanent","bouncedRecipients":[{"emailAddress":"a@x.gov"}]}}`,
			want: FeedbackHardBounce,
			rcpt: []string{"a@x.gov"},
		},
		{
			name: "transient bounce",
			body: `{"notificationType":"Bounce","bounce":{"bounceType":"Transient","bouncedRecipients":[{"emailAddress":"a@x.gov"}]}}`,
			want: FeedbackSoftBounce,
			rcpt: []string{"a@x.gov"},
		},
		{
			name: "complaint via event destination",
			body: `{"eventType":"Complaint","complaint":{"complainedRecipients":[{"emailAddress":"c@x.gov"}]}}`,
			want: FeedbackComplaint,
			rcpt: []string{"c@x.gov"},
		},
		{
			name: "delivery is ignored",
			body: `{"notificationType":"Delivery"}`,
			want: FeedbackIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseSESNotification([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Kind())
			assert.Equal(t, tt.rcpt, n.Recipients())
		})
	}
}

func TestDecodeFeedbackPayload_UnwrapsEnvelope(t *testing.T) {
	body := `{"Type":"Notification","Message":"{\"notificationType\":\"Complaint\",\"complaint\":{\"complainedRecipients\":[{\"emailAddress\":\"c@x.gov\"}]}}"}`
	n, err := DecodeFeedbackPayload([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, FeedbackComplaint, n.Kind())

	_, err = DecodeFeedbackPayload([]byte("not json"))
	assert.Error(t, err)
}
