package queue

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"

	"github.com/rasadhq/rasad/internal/util"
)

// publishTries is how often a publish is attempted before giving up.
const publishTries = 3

// Publisher enqueues pipeline work over one AMQP channel. It satisfies
// analysis.Enqueuer for the orchestrator.
type Publisher struct {
	ch *amqp091.Channel
}

func NewPublisher(ch *amqp091.Channel) *Publisher {
	return &Publisher{ch: ch}
}

func (p *Publisher) publish(queueName string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return util.RetryErr(publishTries, func() error {
		return PublishFIFO(p.ch, queueName, data)
	})
}

func (p *Publisher) EnqueueAnalysis(_ context.Context, analysisID int64) error {
	return p.publish(AnalysisQueue, ProcessAnalysisMsg{AnalysisID: analysisID})
}

func (p *Publisher) EnqueueGraphBuild(_ context.Context, msg BuildGraphMsg) error {
	return p.publish(GraphQueue, msg)
}

func (p *Publisher) EnqueueTrendDetection(_ context.Context, msg DetectTrendsMsg) error {
	return p.publish(TrendQueue, msg)
}
