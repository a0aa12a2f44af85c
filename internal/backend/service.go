package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ServiceClient holds the service-role key. It only performs deletions.
type ServiceClient struct {
	base   string
	apiKey string
	client *http.Client
}

// DeleteByKey deletes every row of collection whose keyColumn equals value,
// returning how many rows the REST API reports as deleted.
//
// Deleting rows that do not exist is not an error.
func (c *ServiceClient) DeleteByKey(ctx context.Context, collection, keyColumn, value string) (int64, error) {
	query := url.Values{}
	query.Set(keyColumn, "eq."+value)

	endpoint := fmt.Sprintf("%s%s/%s?%s", c.base, restPath, url.PathEscape(collection), query.Encode())

	req, err := newRequest(ctx, http.MethodDelete, endpoint, c.apiKey, c.apiKey)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "return=minimal, count=exact")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		return 0, decodeError(resp)
	}

	return parseContentRangeCount(resp.Header.Get("Content-Range")), nil
}

// DeleteUser removes the identity record of userID.
//
// An identity that is already gone counts as deleted.
func (c *ServiceClient) DeleteUser(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("%s%s/admin/users/%s", c.base, authPath, url.PathEscape(userID))

	req, err := newRequest(ctx, http.MethodDelete, endpoint, c.apiKey, c.apiKey)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if !isSuccess(resp.StatusCode) {
		return decodeError(resp)
	}

	return nil
}

// parseContentRangeCount reads the total from a "0-9/10" or "*/0" header.
// An absent or unknown total counts as zero.
func parseContentRangeCount(header string) int64 {
	_, total, ok := strings.Cut(header, "/")
	if !ok || total == "*" {
		return 0
	}

	count, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0
	}

	return count
}
