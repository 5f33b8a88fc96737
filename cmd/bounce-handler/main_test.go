package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

type recordingProcessor struct {
	seen []*model.SESNotification
	err  error
}

func (p *recordingProcessor) Process(_ context.Context, n *model.SESNotification) (*service.FeedbackResult, error) {
	p.seen = append(p.seen, n)
	if p.err != nil {
		return nil, p.err
	}
	return &service.FeedbackResult{Kind: n.Kind()}, nil
}

func snsRecord(id, message string) events.SNSEventRecord {
	return events.SNSEventRecord{SNS: events.SNSEntity{MessageID: id, Message: message}}
}

func TestBounceHandler(t *testing.T) {
	p := &recordingProcessor{}
	h := &bounceHandler{feedback: p, log: zap.NewNop()}

	err := h.handle(context.Background(), events.SNSEvent{Records: []events.SNSEventRecord{
		snsRecord("m1", `{"notificationType":"Bounce","bounce":{"bounceType":"Permanent","bouncedRecipients":[{"emailAddress":"a@gov.example"}]}}`),
		snsRecord("m2", `{"notificationType":"Complaint","complaint":{"complainedRecipients":[{"emailAddress":"b@gov.example"}]}}`),
	}})
	require.NoError(t, err)
	require.Len(t, p.seen, 2)
	assert.Equal(t, model.FeedbackHardBounce, p.seen[0].Kind())
	assert.Equal(t, []string{"b@gov.example"}, p.seen[1].Recipients())
}

func TestBounceHandler_Failures(t *testing.T) {
	h := &bounceHandler{feedback: &recordingProcessor{}, log: zap.NewNop()}
	err := h.handle(context.Background(), events.SNSEvent{Records: []events.SNSEventRecord{snsRecord("bad", "not json")}})
	assert.ErrorContains(t, err, "record bad")

	h.feedback = &recordingProcessor{err: errors.New("db down")}
	err = h.handle(context.Background(), events.SNSEvent{Records: []events.SNSEventRecord{snsRecord("m1", `{"notificationType":"Bounce"}`)}})
	assert.ErrorContains(t, err, "db down")
}
