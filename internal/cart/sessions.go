package cart

import (
	"sync"
	"time"
)

const (
	// SessionTTL は放置カートを破棄するまでの時間。
	SessionTTL = 2 * time.Hour

	// CleanupInterval は掃除ループの間隔。
	CleanupInterval = 5 * time.Minute
)

type session struct {
	store    *Store
	lastSeen time.Time
}

// Sessions はユーザーIDごとのカートを持つレジストリ。
// グローバル変数にせず、serverから各ハンドラへ注入する。
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]*session

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewSessions() *Sessions {
	s := &Sessions{
		sessions:    make(map[int64]*session),
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Get はユーザーのカートを返す。無ければ空のカートを作る。
func (s *Sessions) Get(userID int64) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{store: NewStore()}
		s.sessions[userID] = sess
	}
	sess.lastSeen = time.Now()
	return sess.store
}

// Remove はユーザーのカートを破棄する。
func (s *Sessions) Remove(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}

// Close は掃除ループを止める。
func (s *Sessions) Close() {
	close(s.stopCleanup)
	s.wg.Wait()
}

func (s *Sessions) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireSessions()
		case <-s.stopCleanup:
			return
		}
	}
}

// TTLを超えて触られていないカートを捨てる。
func (s *Sessions) expireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for userID, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > SessionTTL {
			delete(s.sessions, userID)
		}
	}
}
