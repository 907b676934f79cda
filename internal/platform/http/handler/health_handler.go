// Package handler はサービス監視用のHTTPハンドラーを提供します。
package handler

import "github.com/gin-gonic/gin"

// Health は /healthz エンドポイントを処理します。
// プロセスが生きていてルーターが応答できることだけを確認する軽量チェックです。
// DBやRedisへの到達性は検査しません。スイープ側はどちらが落ちていても
// 劣化動作（キャッシュなし、接続リトライ）で継続するためです。
func Health(c *gin.Context) {
	// 監視系にレスポンスをキャッシュさせない
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{"status": "ok"})
	}
}
