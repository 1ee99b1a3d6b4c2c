package utilities

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// SimulateAPICall run handler directly with JSON body, without going through router.
// It return the recorder and the decoded JSON body of the response.
func SimulateAPICall(
	handlerFunc gin.HandlerFunc,
	route string,
	method string,
	body interface{},
) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, route, bytes.NewReader(b))
	c.Request.Header.Set("Content-Type", "application/json")
	handlerFunc(c)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		return rec, nil, err
	}
	return rec, resp, nil
}
