package checkout

import "errors"

type State string

const (
	//モーダルが閉じている。
	StateIdle State = "IDLE"

	//未ログイン。サインイン案内のみ表示し、フォームは出さない。
	StateUnauthenticated State = "UNAUTHENTICATED"

	//フォーム入力中。
	StateCollecting State = "COLLECTING"

	//注文リクエスト送信中。送信ボタンは無効化される。
	StateSubmitting State = "SUBMITTING"

	//注文確定。カートはクリア済み。
	StateConfirmed State = "CONFIRMED"
)

func (s State) String() string {
	return string(s)
}

var (
	ErrNotCollecting = errors.New("checkout is not collecting")
	ErrNotSubmitting = errors.New("checkout is not submitting")
	ErrUnauthenticated = errors.New("sign in to checkout")
)

// Orchestrator はチェックアウトの状態機械。
// Idle → Unauthenticated | Collecting → Submitting → Confirmed | Collecting(再試行)。
type Orchestrator struct {
	state   State
	draft   Draft
	lastErr string
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{state: StateIdle}
}

func (o *Orchestrator) State() State {
	return o.state
}

// LastError は直近の送信失敗メッセージ（再試行画面に出す）。
func (o *Orchestrator) LastError() string {
	return o.lastErr
}

// Begin はモーダルを開く。未ログインならUnauthenticatedで止まる。
func (o *Orchestrator) Begin(authenticated bool) error {
	if !authenticated {
		o.state = StateUnauthenticated
		return ErrUnauthenticated
	}
	o.state = StateCollecting
	o.lastErr = ""
	return nil
}

// SetDraft はフォーム内容を差し替える。入力中だけ可能。
func (o *Orchestrator) SetDraft(d Draft) error {
	if o.state != StateCollecting {
		return ErrNotCollecting
	}
	o.draft = d
	return nil
}

func (o *Orchestrator) Draft() Draft {
	return o.draft
}

// Submit は送信へ遷移する。必須項目が欠けていれば遷移せずエラーを返す。
func (o *Orchestrator) Submit() error {
	if o.state != StateCollecting {
		return ErrNotCollecting
	}
	if err := o.draft.Validate(); err != nil {
		o.lastErr = err.Error()
		return err
	}
	o.state = StateSubmitting
	return nil
}

// Confirm は送信成功。Draftは破棄される。
func (o *Orchestrator) Confirm() error {
	if o.state != StateSubmitting {
		return ErrNotSubmitting
	}
	o.state = StateConfirmed
	o.draft = Draft{}
	o.lastErr = ""
	return nil
}

// Fail は送信失敗。Draftは保持したまま入力へ戻り、msgを表示する。
func (o *Orchestrator) Fail(msg string) error {
	if o.state != StateSubmitting {
		return ErrNotSubmitting
	}
	if msg == "" {
		msg = "failed to place order"
	}
	o.state = StateCollecting
	o.lastErr = msg
	return nil
}

// Close はモーダルを閉じてDraftを破棄する。
// 送信中に閉じた場合、進行中のリクエストは呼び出し側がcontextで打ち切る。
func (o *Orchestrator) Close() {
	o.state = StateIdle
	o.draft = Draft{}
	o.lastErr = ""
}
