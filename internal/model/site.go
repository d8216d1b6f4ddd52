package model

import "time"

// Site は追跡対象のURL（ホスト単位）と、その集計値を表す。
// 1つのSiteドキュメントが全Occurrenceを所有し、書き込みはドキュメント単位で行う。
type Site struct {
	ID          string       `json:"id" bson:"_id"`
	URL         string       `json:"url" bson:"url"`
	TotalVisits int          `json:"totalVisits" bson:"totalVisits"`
	TotalTime   int          `json:"totalTime" bson:"totalTime"` // 分
	Occurrences []Occurrence `json:"occurrences" bson:"occurrences"`
	// Version は楽観的排他制御用のカウンタ。保存成功ごとに1増える。
	// 0は未保存を表す。
	Version   int64     `json:"-" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Occurrence はあるユーザーの1サイトに対する訪問集計を表す。
type Occurrence struct {
	User       string        `json:"user" bson:"user"`
	Visits     int           `json:"visits" bson:"visits"`
	Time       int           `json:"time" bson:"time"` // 分
	Timestamps []OpenSession `json:"timestamps" bson:"timestamps"`
}

// OpenSession は終了時刻が未登録の訪問を表す。
type OpenSession struct {
	ID        string    `json:"id" bson:"_id"`
	StartTime time.Time `json:"startTime" bson:"startTime"`
}

// OccurrenceIndex は指定ユーザーのOccurrenceの位置を返す。存在しない場合は-1。
func (s *Site) OccurrenceIndex(userID string) int {
	for i := range s.Occurrences {
		if s.Occurrences[i].User == userID {
			return i
		}
	}
	return -1
}

// Clone はSiteのディープコピーを返す。
// サービス層はコピーに対して変更を行い、保存成功時のみ結果を公開する。
func (s *Site) Clone() *Site {
	if s == nil {
		return nil
	}
	c := *s
	if s.Occurrences != nil {
		c.Occurrences = make([]Occurrence, len(s.Occurrences))
		for i, o := range s.Occurrences {
			c.Occurrences[i] = o
			if o.Timestamps != nil {
				c.Occurrences[i].Timestamps = append([]OpenSession(nil), o.Timestamps...)
			}
		}
	}
	return &c
}

// UserSite はユーザー単位で射影したサイト訪問情報。
type UserSite struct {
	URL        string
	Visits     int
	Time       int
	Timestamps []OpenSession
}
