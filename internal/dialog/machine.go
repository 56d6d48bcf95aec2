package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"promohub/internal/promotion"
	promoservice "promohub/internal/promotion/service"
)

// PromotionCatalog — срез промо-сервиса, нужный диалогам.
type PromotionCatalog interface {
	Add(ctx context.Context, in promoservice.CreateInput) (int64, error)
	UpdateField(ctx context.Context, id int64, field promotion.Field, value string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*promotion.Promotion, error)
	DailyStats(ctx context.Context) (promotion.DailyStats, error)
}

type UserRegistry interface {
	Register(ctx context.Context, chatID int64) error
	Claim(ctx context.Context, chatID int64) error
	IsClaimed(ctx context.Context, chatID int64) (bool, error)
}

// Machine advances the three admin flows. Every handler receives the
// actor's live state; a Store side effect happens only at flow completion.
type Machine struct {
	states    *Store
	promos    PromotionCatalog
	users     UserRegistry
	render    Renderer
	webAppURL string
}

func NewMachine(states *Store, promos PromotionCatalog, users UserRegistry, render Renderer, webAppURL string) *Machine {
	return &Machine{
		states:    states,
		promos:    promos,
		users:     users,
		render:    render,
		webAppURL: webAppURL,
	}
}

const failureMessage = "Something went wrong. Please try again."

// ===== /start and standing commands =====

func (m *Machine) Start(ctx context.Context, ev *Event, isAdmin bool) error {
	m.states.Clear(ev.ActorID)

	if err := m.users.Register(ctx, ev.ActorID); err != nil {
		return err
	}

	var buttons [][]Button
	if m.webAppURL != "" {
		buttons = [][]Button{{{Label: "🎁 Open the app", URL: m.webAppURL}}}
	}
	if err := m.render.Send(ctx, ev.ActorID, "Welcome! Press the button to open the app and pick a gift.", buttons); err != nil {
		return err
	}

	rows := [][]string{{"🎁 Claim a gift"}}
	if isAdmin {
		rows = append(rows, []string{"🛠 Admin panel", "📊 Statistics"})
	}
	return m.render.SendMenu(ctx, ev.ActorID, "Menu 👇", rows)
}

// ClaimGift выставляет флаг один раз; повторное нажатие — мягкий отказ.
func (m *Machine) ClaimGift(ctx context.Context, ev *Event) error {
	claimed, err := m.users.IsClaimed(ctx, ev.ActorID)
	if err != nil {
		return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
	}
	if claimed {
		return m.render.Send(ctx, ev.ActorID, "You have already claimed your gift.", nil)
	}

	if err := m.users.Claim(ctx, ev.ActorID); err != nil {
		return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
	}

	var buttons [][]Button
	if m.webAppURL != "" {
		buttons = [][]Button{{{Label: "🎁 Open the app", URL: m.webAppURL}}}
	}
	return m.render.Send(ctx, ev.ActorID, "Your gift is waiting in the app 🎁", buttons)
}

func (m *Machine) AdminPanel(ctx context.Context, ev *Event) error {
	return m.render.Send(ctx, ev.ActorID, "Admin panel:", [][]Button{
		{{Label: "➕ Add promotion", Data: "admin:add_promo"}},
		{{Label: "✏️ Edit promotion", Data: "admin:edit_promo"}},
		{{Label: "🗑 Delete promotion", Data: "admin:del_promo"}},
	})
}

func (m *Machine) Stats(ctx context.Context, ev *Event) error {
	stats, err := m.promos.DailyStats(ctx)
	if err != nil {
		return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
	}

	var b strings.Builder
	b.WriteString("📊 Statistics\n")
	fmt.Fprintf(&b, "New users today: %d\n", stats.NewUsers)
	b.WriteString("\nRedirect clicks:\n")
	for _, tc := range stats.Redirects {
		fmt.Fprintf(&b, "- %s: %d\n", tc.Title, tc.Count)
	}
	return m.render.Send(ctx, ev.ActorID, b.String(), nil)
}

// ===== add-promotion flow =====

func (m *Machine) StartAdd(ctx context.Context, ev *Event) error {
	m.states.Begin(ev.ActorID, FlowAddPromo, StepPreviewImage)
	return m.render.Send(ctx, ev.ActorID, "Send preview image for the card (photo). You can skip with /skip.", nil)
}

func (m *Machine) addPreviewPhoto(ctx context.Context, ev *Event, st *State) error {
	ref := ev.PhotoRef
	st.PreviewRef = &ref
	st.Step = StepTitle
	return m.render.Send(ctx, ev.ActorID, "Send promotion title:", nil)
}

func (m *Machine) addPreviewText(ctx context.Context, ev *Event, st *State) error {
	if strings.TrimSpace(ev.Text) != "/skip" {
		// не та форма события — состояние не двигаем
		return m.render.Send(ctx, ev.ActorID, "Send a photo or /skip.", nil)
	}
	st.PreviewRef = nil
	st.Step = StepTitle
	return m.render.Send(ctx, ev.ActorID, "Send promotion title:", nil)
}

func (m *Machine) addTitle(ctx context.Context, ev *Event, st *State) error {
	title := strings.TrimSpace(ev.Text)
	if title == "" {
		return m.render.Send(ctx, ev.ActorID, "Title cannot be empty. Send promotion title:", nil)
	}
	st.Title = title
	st.Step = StepDescription
	return m.render.Send(ctx, ev.ActorID, "Send promotion description:", nil)
}

func (m *Machine) addDescription(ctx context.Context, ev *Event, st *State) error {
	st.Description = strings.TrimSpace(ev.Text)
	st.Step = StepLink
	return m.render.Send(ctx, ev.ActorID, "Send promotion link (URL):", nil)
}

func (m *Machine) addLink(ctx context.Context, ev *Event, st *State) error {
	// ссылка принимается как есть, без проверки формата
	st.Link = strings.TrimSpace(ev.Text)
	st.Step = StepConfirm

	preview := fmt.Sprintf("Preview:\n%s\n\n%s\n\n%s", st.Title, st.Description, st.Link)
	return m.render.Send(ctx, ev.ActorID, preview, [][]Button{{
		{Label: "✅ Publish", Data: "add_promo:yes"},
		{Label: "❌ Cancel", Data: "add_promo:no"},
	}})
}

func (m *Machine) addConfirm(ctx context.Context, ev *Event, st *State) error {
	switch ev.Data {
	case "add_promo:yes":
		// preview image дублируется в модальную картинку
		id, err := m.promos.Add(ctx, promoservice.CreateInput{
			Title:       st.Title,
			Description: st.Description,
			Link:        st.Link,
			PreviewRef:  st.PreviewRef,
			DetailRef:   st.PreviewRef,
		})
		if err != nil {
			// состояние остаётся, шаг можно повторить
			return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
		}
		m.states.Clear(ev.ActorID)
		return m.render.Send(ctx, ev.ActorID, fmt.Sprintf("Promotion #%d published.", id), nil)
	case "add_promo:no":
		m.states.Clear(ev.ActorID)
		return m.render.Send(ctx, ev.ActorID, "Canceled.", nil)
	default:
		return m.render.Send(ctx, ev.ActorID, "Use the buttons above.", nil)
	}
}

// ===== edit-promotion flow =====

func (m *Machine) StartEdit(ctx context.Context, ev *Event) error {
	promos, err := m.promos.List(ctx)
	if err != nil {
		return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
	}
	if len(promos) == 0 {
		return m.render.Send(ctx, ev.ActorID, "No promotions.", nil)
	}

	m.states.Begin(ev.ActorID, FlowEditPromo, StepPickPromo)
	return m.render.Send(ctx, ev.ActorID, "Choose promotion:", promoButtons(promos, "edit_promo"))
}

func (m *Machine) editPickPromo(ctx context.Context, ev *Event, st *State) error {
	id, ok := parseIDData(ev.Data, "edit_promo:")
	if !ok {
		return m.render.Send(ctx, ev.ActorID, "Choose a promotion from the list.", nil)
	}
	st.PromoID = id
	st.Step = StepPickField
	return m.render.Send(ctx, ev.ActorID, "What do you want to change?", [][]Button{
		{
			{Label: "Preview Image", Data: "edit_field:" + string(promotion.FieldPreviewImage)},
			{Label: "Title", Data: "edit_field:" + string(promotion.FieldTitle)},
		},
		{
			{Label: "Description", Data: "edit_field:" + string(promotion.FieldDescription)},
			{Label: "Modal Image", Data: "edit_field:" + string(promotion.FieldDetailImage)},
		},
		{
			{Label: "Link", Data: "edit_field:" + string(promotion.FieldLink)},
		},
	})
}

func (m *Machine) editPickField(ctx context.Context, ev *Event, st *State) error {
	name, ok := strings.CutPrefix(ev.Data, "edit_field:")
	if !ok {
		return m.render.Send(ctx, ev.ActorID, "Choose a field from the list.", nil)
	}
	field, ok := promotion.ParseField(name)
	if !ok {
		// имя вне allow-list до хранилища не доходит
		return m.render.Send(ctx, ev.ActorID, "Choose a field from the list.", nil)
	}
	st.Field = field
	st.Step = StepNewValue
	return m.render.Send(ctx, ev.ActorID, fmt.Sprintf("Send new %s:", field.Label()), nil)
}

func (m *Machine) editNewText(ctx context.Context, ev *Event, st *State) error {
	return m.commitEdit(ctx, ev, st, strings.TrimSpace(ev.Text))
}

func (m *Machine) editNewPhoto(ctx context.Context, ev *Event, st *State) error {
	if !st.Field.IsImage() {
		return m.render.Send(ctx, ev.ActorID, "Send text value.", nil)
	}
	return m.commitEdit(ctx, ev, st, ev.PhotoRef)
}

// commitEdit пишет сразу, без шага подтверждения — в отличие от add/delete.
func (m *Machine) commitEdit(ctx context.Context, ev *Event, st *State, value string) error {
	err := m.promos.UpdateField(ctx, st.PromoID, st.Field, value)
	if errors.Is(err, promoservice.ErrNotFound) {
		m.states.Clear(ev.ActorID)
		return m.render.Send(ctx, ev.ActorID, "Promotion not found.", nil)
	}
	if err != nil {
		return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
	}
	m.states.Clear(ev.ActorID)
	return m.render.Send(ctx, ev.ActorID, "Promotion updated.", nil)
}

// ===== delete-promotion flow =====

func (m *Machine) StartDelete(ctx context.Context, ev *Event) error {
	promos, err := m.promos.List(ctx)
	if err != nil {
		return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
	}
	if len(promos) == 0 {
		return m.render.Send(ctx, ev.ActorID, "No promotions.", nil)
	}

	m.states.Begin(ev.ActorID, FlowDeletePromo, StepDeletePick)
	return m.render.Send(ctx, ev.ActorID, "Choose promotion:", promoButtons(promos, "del_promo"))
}

func (m *Machine) deletePick(ctx context.Context, ev *Event, st *State) error {
	id, ok := parseIDData(ev.Data, "del_promo:")
	if !ok {
		return m.render.Send(ctx, ev.ActorID, "Choose a promotion from the list.", nil)
	}
	st.PromoID = id
	st.Step = StepDeleteConfirm
	return m.render.Send(ctx, ev.ActorID, "Confirm deletion?", [][]Button{{
		{Label: "✅ Confirm", Data: "del_confirm:yes"},
		{Label: "❌ Cancel", Data: "del_confirm:no"},
	}})
}

func (m *Machine) deleteConfirm(ctx context.Context, ev *Event, st *State) error {
	switch ev.Data {
	case "del_confirm:yes":
		err := m.promos.Delete(ctx, st.PromoID)
		if errors.Is(err, promoservice.ErrNotFound) {
			m.states.Clear(ev.ActorID)
			return m.render.Send(ctx, ev.ActorID, "Promotion not found.", nil)
		}
		if err != nil {
			return m.render.Send(ctx, ev.ActorID, failureMessage, nil)
		}
		m.states.Clear(ev.ActorID)
		return m.render.Send(ctx, ev.ActorID, "Promotion deleted.", nil)
	case "del_confirm:no":
		m.states.Clear(ev.ActorID)
		return m.render.Send(ctx, ev.ActorID, "Canceled.", nil)
	default:
		return m.render.Send(ctx, ev.ActorID, "Use the buttons above.", nil)
	}
}

// ===== helpers =====

func promoButtons(promos []*promotion.Promotion, prefix string) [][]Button {
	rows := make([][]Button, 0, len(promos))
	for _, p := range promos {
		rows = append(rows, []Button{{
			Label: p.Title,
			Data:  fmt.Sprintf("%s:%d", prefix, p.ID),
		}})
	}
	return rows
}

func parseIDData(data, prefix string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
