package platforms

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	// maxResponseSize プラットフォームAPIからのレスポンス上限 (10MB)
	maxResponseSize = 10 * 1024 * 1024
)

// restClient は各プラットフォームクライアントが共有するHTTP層
type restClient struct {
	kind       Kind
	httpClient *http.Client
}

func newRESTClient(kind Kind, timeout time.Duration) restClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return restClient{kind: kind, httpClient: &http.Client{Timeout: timeout}}
}

// doJSON はJSONリクエストの実行と基本的なレスポンス処理を行う共通メソッド
// requestData が nil ならボディ無し、responseData が nil ならレスポンスを捨てる。
func (c restClient) doJSON(ctx context.Context, method, url string, headers map[string]string, requestData, responseData interface{}) error {
	var body io.Reader
	if requestData != nil {
		requestBody, err := json.Marshal(requestData)
		if err != nil {
			return fmt.Errorf("リクエストのJSON化に失敗: %w", err)
		}
		body = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	respBody, err := c.do(req)
	if err != nil {
		return err
	}
	if responseData == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, responseData); err != nil {
		return fmt.Errorf("%w: %s のレスポンスJSON解析に失敗: %v", ErrInvalidResponse, c.kind.DisplayName(), err)
	}
	return nil
}

func (c restClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s へのHTTPリクエストの実行に失敗: %w", c.kind.DisplayName(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s API エラー (status: %d): %s", ErrRequestFailed, c.kind.DisplayName(), resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func basicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FlexString は数値・文字列どちらでも届くIDや価格を受け取る
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

func (f FlexString) Float() float64 {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0
	}
	return v
}

// orderDate は ISO8601 日時から日付部分 (YYYY-MM-DD) を取り出す
func orderDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
