/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Author: Rosie Kern <rk18@sanger.ac.uk>
 * Author: Iaroslav Popov <ip13@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wtsi-hgi/gplot/store"
)

const clientTimeout = 2 * time.Minute

// Client talks to a Server.
type Client struct {
	r *resty.Client
}

// NewClient returns a Client for a Server listening at the given base url, eg.
// "http://localhost:8080".
func NewClient(url string) *Client {
	return &Client{
		r: resty.New().SetBaseURL(url).SetTimeout(clientTimeout),
	}
}

func (c *Client) request() *resty.Request {
	return c.r.R().SetError(&errorResponse{})
}

// Plot asks the server to render the plot, returning the image.
func (c *Client) Plot(req PlotRequest) ([]byte, error) {
	resp, err := c.request().SetBody(req).Post(EndPointPlot)
	if err != nil {
		return nil, err
	}

	if err = responseError(resp); err != nil {
		return nil, err
	}

	return resp.Body(), nil
}

// Fit asks the server to fit a curve, returning the fitted parameters and the
// fitted curve's equation.
func (c *Client) Fit(req FitRequest) (*FitResponse, error) {
	var fr FitResponse

	resp, err := c.request().SetBody(req).SetResult(&fr).Post(EndPointFit)
	if err != nil {
		return nil, err
	}

	if err = responseError(resp); err != nil {
		return nil, err
	}

	return &fr, nil
}

// List returns summaries of the plots stored by the server.
func (c *Client) List() ([]*store.Summary, error) {
	var list []*store.Summary

	resp, err := c.request().SetResult(&list).Get(EndPointPlots)
	if err != nil {
		return nil, err
	}

	if err = responseError(resp); err != nil {
		return nil, err
	}

	return list, nil
}

// Render asks the server to render a stored plot in the given format.
func (c *Client) Render(name, format string) ([]byte, error) {
	resp, err := c.request().
		SetPathParams(map[string]string{paramName: name}).
		SetQueryParam(paramFormat, format).
		Get(EndPointPlots + "/{" + paramName + "}")
	if err != nil {
		return nil, err
	}

	if err = responseError(resp); err != nil {
		return nil, err
	}

	return resp.Body(), nil
}

// StatusError is returned when the server responds with an error status.
type StatusError struct {
	Code int
	Msg  string
}

func (e StatusError) Error() string {
	return http.StatusText(e.Code) + ": " + e.Msg
}

// ErrServer matches any StatusError with errors.Is().
var ErrServer = errors.New("server error")

func (e StatusError) Is(target error) bool {
	return target == ErrServer //nolint:errorlint
}

func responseError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}

	msg := resp.String()

	if er, ok := resp.Error().(*errorResponse); ok && er.Error != "" {
		msg = er.Error
	}

	return StatusError{Code: resp.StatusCode(), Msg: msg}
}
