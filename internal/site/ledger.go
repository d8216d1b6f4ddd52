// Package site はサイト訪問の記録・終了・集計を行うドメインロジックを提供する。
//
// Ledgerはメモリ上のSiteドキュメントに対する純粋な変更操作のみを担い、
// 永続化と排他制御はServiceが担う。
package site

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/sitetrack/internal/model"
)

// TimePrecision は保存する時刻の精度。ストアによらず同じ経過分数になるよう、
// 入力時刻はこの単位に切り捨ててから扱う。
const TimePrecision = time.Millisecond

// Ledger はSiteドキュメントの集計値を不変条件を保ったまま更新する。
type Ledger struct {
	newID func() string
	now   func() time.Time
}

// NewLedger はuuidとシステム時刻を使うLedgerを生成する。
func NewLedger() *Ledger {
	return &Ledger{
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
}

// NewSite は指定URLの空のSiteを生成する。Versionは0（未保存）。
func (l *Ledger) NewSite(url string) *model.Site {
	now := l.now()
	return &model.Site{
		ID:          l.newID(),
		URL:         url,
		Occurrences: []model.Occurrence{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ElapsedMinutes は開始から終了までの経過時間を分単位で切り上げて返す。
// 終了が開始以前の場合は0以下を返す。
func ElapsedMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return int(d / time.Minute)
	}
	return int((d + time.Minute - 1) / time.Minute)
}

// Record はユーザーの訪問を1件記録し、作成したOpenSessionのIDを返す。
// endがnilの場合は未終了の訪問としてOpenSessionを追加する。
// endが指定された場合は経過分数を集計に加算し、空文字を返す。
func (l *Ledger) Record(s *model.Site, userID string, start time.Time, end *time.Time) string {
	idx := s.OccurrenceIndex(userID)
	if idx < 0 {
		s.Occurrences = append(s.Occurrences, model.Occurrence{
			User:       userID,
			Timestamps: []model.OpenSession{},
		})
		idx = len(s.Occurrences) - 1
	}
	occ := &s.Occurrences[idx]
	occ.Visits++
	s.TotalVisits++
	s.UpdatedAt = l.now()

	if end == nil {
		session := model.OpenSession{
			ID:        l.newID(),
			StartTime: start,
		}
		occ.Timestamps = append(occ.Timestamps, session)
		return session.ID
	}

	if minutes := ElapsedMinutes(start, *end); minutes >= 1 {
		occ.Time += minutes
		s.TotalTime += minutes
	}
	return ""
}

// Close はrecordIDのOpenSessionを終了し、経過分数を集計に加算して返す。
// 経過分数が1未満の場合はSiteを変更せずにBAD_VALUEを返す。
func (l *Ledger) Close(s *model.Site, userID, recordID string, end time.Time) (int, error) {
	idx := s.OccurrenceIndex(userID)
	if idx < 0 {
		return 0, model.NewNoOccurrencesError()
	}
	occ := &s.Occurrences[idx]

	pos := -1
	for i := range occ.Timestamps {
		if occ.Timestamps[i].ID == recordID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 0, model.NewNoTimestampError(recordID)
	}

	minutes := ElapsedMinutes(occ.Timestamps[pos].StartTime, end)
	if minutes < 1 {
		return 0, model.NewBadValueError()
	}

	occ.Time += minutes
	s.TotalTime += minutes
	occ.Timestamps = append(occ.Timestamps[:pos], occ.Timestamps[pos+1:]...)
	s.UpdatedAt = l.now()
	return minutes, nil
}

// PruneOpenSessions はcutoffより前に開始された未終了の訪問を削除し、削除件数を返す。
// 未終了の訪問は時間を持たないため、集計値は変化しない。
func (l *Ledger) PruneOpenSessions(s *model.Site, cutoff time.Time) int {
	removed := 0
	for i := range s.Occurrences {
		occ := &s.Occurrences[i]
		kept := occ.Timestamps[:0]
		for _, ts := range occ.Timestamps {
			if ts.StartTime.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, ts)
		}
		occ.Timestamps = kept
	}
	if removed > 0 {
		s.UpdatedAt = l.now()
	}
	return removed
}

// CheckTotals はSiteの集計値がOccurrenceの合計と一致することを検証する。
func CheckTotals(s *model.Site) error {
	visits, minutes := 0, 0
	for _, o := range s.Occurrences {
		visits += o.Visits
		minutes += o.Time
	}
	if visits != s.TotalVisits {
		return fmt.Errorf("totalVisits mismatch: got %d, occurrences sum %d", s.TotalVisits, visits)
	}
	if minutes != s.TotalTime {
		return fmt.Errorf("totalTime mismatch: got %d, occurrences sum %d", s.TotalTime, minutes)
	}
	return nil
}

// ProjectForUser は指定ユーザーのOccurrenceをUserSiteに射影する。
// ユーザーの記録がない場合はfalseを返す。
func ProjectForUser(s *model.Site, userID string) (model.UserSite, bool) {
	idx := s.OccurrenceIndex(userID)
	if idx < 0 {
		return model.UserSite{}, false
	}
	occ := s.Occurrences[idx]
	return model.UserSite{
		URL:        s.URL,
		Visits:     occ.Visits,
		Time:       occ.Time,
		Timestamps: occ.Timestamps,
	}, true
}
