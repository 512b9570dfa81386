package subscriptions

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/dmitrymomot/subscriptions/pkg/email"
	"github.com/dmitrymomot/subscriptions/pkg/logger"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
)

const (
	planChangedSubject = "Your plan has been changed"
	planChangedTag     = "plan-changed"
)

var planChangedTmpl = template.Must(template.New("plan_changed").Parse(
	`<p>Hi {{.Name}},</p>
<p>Your subscription has been moved to the <strong>{{.Plan}}</strong> plan{{with .Price}} at {{.}}{{end}}.</p>
<p>The prorated difference appears on your next invoice.</p>`,
))

type planChangedData struct {
	Name  string
	Plan  string
	Price string
}

// notifyPlanChanged emails the actor about a completed plan change.
// Delivery failures are logged only: the change is already committed.
func (p *Plugin) notifyPlanChanged(ctx context.Context, actor task.Actor, plan billing.Plan) {
	if actor.Email == "" {
		return
	}
	log := p.log.With(logger.Event(planChangedTag), logger.MemberID(actor.ID), logger.PlanID(plan.ID))

	body, err := renderPlanChanged(actor, plan)
	if err != nil {
		log.ErrorContext(ctx, "failed to render plan change email", logger.Error(err))
		return
	}
	msg := email.Message{
		To:       actor.Email,
		Subject:  planChangedSubject,
		HTMLBody: body,
		Tag:      planChangedTag,
	}
	if err := p.mailer.Send(ctx, msg); err != nil {
		log.WarnContext(ctx, "failed to send plan change email", logger.Error(err))
		return
	}
	log.DebugContext(ctx, "plan change email sent")
}

func renderPlanChanged(actor task.Actor, plan billing.Plan) (string, error) {
	data := planChangedData{Name: actor.Name, Plan: plan.Name}
	if data.Name == "" {
		data.Name = actor.Email
	}
	if len(plan.Prices) > 0 {
		pr := plan.Prices[0]
		data.Price = fmt.Sprintf("%.2f %s", pr.Price, pr.Currency)
		if pr.Interval != "" {
			data.Price += " per " + pr.Interval
		}
	}

	var buf bytes.Buffer
	if err := planChangedTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
