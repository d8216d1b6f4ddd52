package app

import (
	"fmt"
	"strings"
)

// Command はsitetrackのサブコマンド。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。引数なしの場合もこれになる。
	CommandServe Command = "serve"
	// CommandWorker は放置訪問のクリーンアップと/metricsを提供するワーカーを起動する。
	CommandWorker Command = "worker"
	// CommandMigrate はPostgreSQLのマイグレーション、またはMongoDBのインデックス作成を行う。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中のAPIの/healthを確認して終了する。distrolessイメージ用。
	CommandHealthcheck Command = "healthcheck"
)

var commands = []Command{CommandServe, CommandWorker, CommandMigrate, CommandHealthcheck}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。残りの引数は無視する。
// 未知のサブコマンドは打ち間違いでAPIが起動しないようエラーにする。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}
	for _, c := range commands {
		if args[0] == string(c) {
			return c, nil
		}
	}

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = string(c)
	}
	return "", fmt.Errorf("unknown command %q (want one of: %s)", args[0], strings.Join(names, ", "))
}
