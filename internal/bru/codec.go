package bru

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var methods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
	"options": true, "head": true, "trace": true, "connect": true,
}

var (
	ErrNoName = errors.New("request has no name")
	ErrNoHTTP = errors.New("http request has no method block")
)

// TextCodec implements Codec for the block based text format.
type TextCodec struct{}

var _ Codec = (*TextCodec)(nil)

func New() *TextCodec {
	return &TextCodec{}
}

func (c *TextCodec) StringifyRequest(req Request) (string, error) {
	if req.Meta.Name == "" {
		return "", ErrNoName
	}
	typ := req.Meta.Type
	if typ == "" {
		typ = TypeHTTP
	}
	if typ == TypeHTTP && req.HTTP == nil {
		return "", ErrNoHTTP
	}

	w := &writer{}
	meta := []KeyValue{
		{Name: "name", Value: req.Meta.Name, Enabled: true},
		{Name: "type", Value: string(typ), Enabled: true},
	}
	if req.Meta.Seq > 0 {
		meta = append(meta, KeyValue{Name: "seq", Value: strconv.Itoa(req.Meta.Seq), Enabled: true})
	}
	w.dict("meta", meta)

	if req.HTTP != nil {
		method := strings.ToLower(req.HTTP.Method)
		if !methods[method] {
			return "", fmt.Errorf("unsupported http method %q", req.HTTP.Method)
		}
		w.dict(method, []KeyValue{
			{Name: "url", Value: req.HTTP.URL, Enabled: true},
			{Name: "body", Value: orDefault(req.HTTP.Body, BodyNone), Enabled: true},
			{Name: "auth", Value: orDefault(req.HTTP.Auth, AuthInherit), Enabled: true},
		})
	}

	for _, pt := range []ParamType{ParamQuery, ParamPath} {
		params := req.ParamsOf(pt)
		if len(params) == 0 {
			continue
		}
		entries := make([]KeyValue, 0, len(params))
		for _, p := range params {
			entries = append(entries, KeyValue{Name: p.Name, Value: p.Value, Enabled: p.Enabled})
		}
		w.dict("params:"+string(pt), entries)
	}

	if len(req.Headers) > 0 {
		w.dict("headers", req.Headers)
	}

	for _, body := range []struct{ mode, text string }{
		{BodyJSON, req.Body.JSON},
		{BodyText, req.Body.Text},
		{BodyXML, req.Body.XML},
		{BodyGraphQL, req.Body.GraphQL},
	} {
		if body.text != "" {
			w.text("body:"+body.mode, body.text)
		}
	}

	if req.Docs != "" {
		w.text("docs", req.Docs)
	}

	return w.String(), nil
}

func (c *TextCodec) ParseRequest(text string) (*Request, error) {
	blocks, err := splitBlocks(text)
	if err != nil {
		return nil, err
	}

	req := &Request{}
	for _, b := range blocks {
		switch {
		case b.name == "meta":
			req.Meta.Name = b.lookup("name")
			req.Meta.Type = RequestType(b.lookup("type"))
			if seq := b.lookup("seq"); seq != "" {
				n, err := strconv.Atoi(seq)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid seq %q", b.line, seq)
				}
				req.Meta.Seq = n
			}
		case methods[b.name]:
			req.HTTP = &HTTP{
				Method: b.name,
				URL:    b.lookup("url"),
				Body:   orDefault(b.lookup("body"), BodyNone),
				Auth:   b.lookup("auth"),
			}
		case b.name == "params:query" || b.name == "query":
			req.Params = append(req.Params, toParams(b.dict(), ParamQuery)...)
		case b.name == "params:path":
			req.Params = append(req.Params, toParams(b.dict(), ParamPath)...)
		case b.name == "headers":
			req.Headers = b.dict()
		case b.name == "body:json":
			req.Body.JSON = b.text()
		case b.name == "body:text":
			req.Body.Text = b.text()
		case b.name == "body:xml":
			req.Body.XML = b.text()
		case b.name == "body:graphql":
			req.Body.GraphQL = b.text()
		case b.name == "docs":
			req.Docs = b.text()
		}
	}

	if req.Meta.Type == "" {
		req.Meta.Type = TypeHTTP
	}
	return req, nil
}

func (c *TextCodec) StringifyRoot(root Root) (string, error) {
	w := &writer{}

	if root.Meta != nil {
		meta := []KeyValue{{Name: "name", Value: root.Meta.Name, Enabled: true}}
		if root.Meta.Seq > 0 {
			meta = append(meta, KeyValue{Name: "seq", Value: strconv.Itoa(root.Meta.Seq), Enabled: true})
		}
		w.dict("meta", meta)
	}

	if len(root.Headers) > 0 {
		w.dict("headers", root.Headers)
	}

	w.dict("auth", []KeyValue{{Name: "mode", Value: orDefault(root.Auth, AuthInherit), Enabled: true}})

	if len(root.Vars.Req) > 0 {
		w.dict("vars:pre-request", root.Vars.Req)
	}
	if len(root.Vars.Res) > 0 {
		w.dict("vars:post-response", root.Vars.Res)
	}
	if root.Script.Req != "" {
		w.text("script:pre-request", root.Script.Req)
	}
	if root.Script.Res != "" {
		w.text("script:post-response", root.Script.Res)
	}
	if root.Tests != "" {
		w.text("tests", root.Tests)
	}
	if root.Docs != "" {
		w.text("docs", root.Docs)
	}

	return w.String(), nil
}

func (c *TextCodec) ParseRoot(text string) (*Root, error) {
	blocks, err := splitBlocks(text)
	if err != nil {
		return nil, err
	}

	root := &Root{}
	for _, b := range blocks {
		switch b.name {
		case "meta":
			root.Meta = &Meta{Name: b.lookup("name")}
			if seq, err := strconv.Atoi(b.lookup("seq")); err == nil {
				root.Meta.Seq = seq
			}
		case "headers":
			root.Headers = b.dict()
		case "auth":
			root.Auth = b.lookup("mode")
		case "vars:pre-request":
			root.Vars.Req = b.dict()
		case "vars:post-response":
			root.Vars.Res = b.dict()
		case "script:pre-request":
			root.Script.Req = b.text()
		case "script:post-response":
			root.Script.Res = b.text()
		case "tests":
			root.Tests = b.text()
		case "docs":
			root.Docs = b.text()
		}
	}
	return root, nil
}

// StringifyEnvironment writes all plain variables into a single vars block;
// disabled ones are prefixed with "~". Secret variables are listed by name only.
func (c *TextCodec) StringifyEnvironment(env Environment) (string, error) {
	w := &writer{}

	var plain, secret []KeyValue
	for _, v := range env.Variables {
		if v.Name == "" {
			return "", errors.New("environment variable has no name")
		}
		if v.Secret {
			secret = append(secret, KeyValue{Name: v.Name, Enabled: v.Enabled})
			continue
		}
		plain = append(plain, KeyValue{Name: v.Name, Value: v.Value, Enabled: v.Enabled})
	}

	w.dict("vars", plain)
	if len(secret) > 0 {
		w.list("vars:secret", secret)
	}
	return w.String(), nil
}

func (c *TextCodec) ParseEnvironment(text string) (*Environment, error) {
	blocks, err := splitBlocks(text)
	if err != nil {
		return nil, err
	}

	env := &Environment{}
	for _, b := range blocks {
		switch b.name {
		case "vars":
			for _, kv := range b.dict() {
				env.Variables = append(env.Variables, Variable{Name: kv.Name, Value: kv.Value, Enabled: kv.Enabled})
			}
		case "vars:secret":
			for _, kv := range b.list() {
				env.Variables = append(env.Variables, Variable{Name: kv.Name, Enabled: kv.Enabled, Secret: true})
			}
		}
	}
	return env, nil
}

func toParams(entries []KeyValue, typ ParamType) []Param {
	params := make([]Param, 0, len(entries))
	for _, kv := range entries {
		params = append(params, Param{Name: kv.Name, Value: kv.Value, Type: typ, Enabled: kv.Enabled})
	}
	return params
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
