package rpc

import (
	"fmt"
	"net/rpc"
	"time"
)

type Client struct {
	client *rpc.Client
}

func NewClient(port int) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := range maxretries {
		if client, err = rpc.DialHTTP("tcp", address(port)); err == nil {
			break
		}
		modRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	if client == nil {
		return nil, fmt.Errorf("dial failed max retries: %v", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	modRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) Reset(hard bool) error     { return call(c.client, mReset, hard) }
func (c *Client) SetPause(pause bool) error { return call(c.client, mSetPause, pause) }
func (c *Client) SaveSlot(slot int) error   { return call(c.client, mSaveSlot, slot) }
func (c *Client) LoadSlot(slot int) error   { return call(c.client, mLoadSlot, slot) }
func (c *Client) Stop() error               { return call(c.client, mStop, nil) }

// IsReady reports whether the remote emulation loop is still running.
func (c *Client) IsReady() (bool, error) { return request[bool](c.client, mIsReady, nil) }

func call(client *rpc.Client, funcname string, args any) error {
	_, err := request[struct{}](client, funcname, args)
	return err
}

// Errors returned by the remote emulator come back as plain strings, they
// can't be matched with errors.Is.
func request[T any](client *rpc.Client, funcname string, args any) (T, error) {
	if args == nil {
		args = &struct{}{}
	}
	var reply T
	if err := client.Call(funcname, args, &reply); err != nil {
		return reply, fmt.Errorf("%s: %w", funcname, err)
	}
	return reply, nil
}
