package dialog

import (
	"context"

	"promohub/internal/metrics"
)

type routeKey struct {
	flow Flow
	step Step
	kind Kind
}

type handlerFunc func(ctx context.Context, ev *Event, st *State) error

type command struct {
	handle    func(ctx context.Context, ev *Event) error
	adminOnly bool
}

// Dispatcher is the single entry point for inbound events: it resolves the
// acting identity, applies the admin gate, then routes to exactly one
// handler — a standing command or the (flow, step, kind) handler of the
// actor's current state.
type Dispatcher struct {
	machine  *Machine
	render   Renderer
	adminID  int64
	routes   map[routeKey]handlerFunc
	commands map[string]command
}

func NewDispatcher(machine *Machine, render Renderer, adminID int64) *Dispatcher {
	d := &Dispatcher{
		machine: machine,
		render:  render,
		adminID: adminID,
	}

	d.commands = map[string]command{
		"/start":          {handle: func(ctx context.Context, ev *Event) error { return machine.Start(ctx, ev, ev.ActorID == adminID) }},
		"🎁 Claim a gift":  {handle: machine.ClaimGift},
		"🛠 Admin panel":   {handle: machine.AdminPanel, adminOnly: true},
		"📊 Statistics":    {handle: machine.Stats, adminOnly: true},
		"admin:add_promo":  {handle: machine.StartAdd, adminOnly: true},
		"admin:edit_promo": {handle: machine.StartEdit, adminOnly: true},
		"admin:del_promo":  {handle: machine.StartDelete, adminOnly: true},
	}

	d.routes = map[routeKey]handlerFunc{
		{FlowAddPromo, StepPreviewImage, KindPhoto}: machine.addPreviewPhoto,
		{FlowAddPromo, StepPreviewImage, KindText}:  machine.addPreviewText,
		{FlowAddPromo, StepTitle, KindText}:         machine.addTitle,
		{FlowAddPromo, StepDescription, KindText}:   machine.addDescription,
		{FlowAddPromo, StepLink, KindText}:          machine.addLink,
		{FlowAddPromo, StepConfirm, KindCallback}:   machine.addConfirm,

		{FlowEditPromo, StepPickPromo, KindCallback}: machine.editPickPromo,
		{FlowEditPromo, StepPickField, KindCallback}: machine.editPickField,
		{FlowEditPromo, StepNewValue, KindText}:      machine.editNewText,
		{FlowEditPromo, StepNewValue, KindPhoto}:     machine.editNewPhoto,

		{FlowDeletePromo, StepDeletePick, KindCallback}:    machine.deletePick,
		{FlowDeletePromo, StepDeleteConfirm, KindCallback}: machine.deleteConfirm,
	}

	return d
}

// Dispatch handles one inbound event. Unaddressed chatter (no command, no
// active flow) is dropped silently.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if cmd, ok := d.commandFor(&ev); ok {
		if cmd.adminOnly && ev.ActorID != d.adminID {
			// отказ без каких-либо изменений состояния
			metrics.DialogEventsTotal.WithLabelValues("command", "denied").Inc()
			return d.render.Send(ctx, ev.ActorID, "Admins only.", nil)
		}
		err := cmd.handle(ctx, &ev)
		metrics.DialogEventsTotal.WithLabelValues("command", result(err)).Inc()
		return err
	}

	st := d.machine.states.Get(ev.ActorID)
	if st == nil {
		return nil
	}

	// все диалоговые потоки административные
	if ev.ActorID != d.adminID {
		metrics.DialogEventsTotal.WithLabelValues(st.Flow.String(), "denied").Inc()
		return d.render.Send(ctx, ev.ActorID, "Admins only.", nil)
	}

	h, ok := d.routes[routeKey{st.Flow, st.Step, ev.Kind}]
	if !ok {
		// неожиданная форма события для текущего шага: повторный
		// запрос без продвижения состояния
		metrics.DialogEventsTotal.WithLabelValues(st.Flow.String(), "rejected").Inc()
		return d.render.Send(ctx, ev.ActorID, "Unexpected input, try again.", nil)
	}

	err := h(ctx, &ev, st)
	metrics.DialogEventsTotal.WithLabelValues(st.Flow.String(), result(err)).Inc()
	return err
}

func (d *Dispatcher) commandFor(ev *Event) (command, bool) {
	switch ev.Kind {
	case KindText:
		cmd, ok := d.commands[ev.Text]
		return cmd, ok
	case KindCallback:
		cmd, ok := d.commands[ev.Data]
		return cmd, ok
	default:
		return command{}, false
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
