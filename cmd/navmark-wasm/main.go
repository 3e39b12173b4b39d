//go:build js && wasm

// Command navmark-wasm runs the page decorations in the browser. Load it
// from the base template with wasm_exec.js in place of the old page script.
package main

import (
	"syscall/js"

	"github.com/fragmede/navmark/internal/decorate"
)

type document struct {
	v js.Value
}

func (d document) ElementByID(id string) (decorate.Element, bool) {
	el := d.v.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, false
	}
	return element{el.Get("classList")}, true
}

type element struct {
	classList js.Value
}

func (e element) AddClass(token string)    { e.classList.Call("add", token) }
func (e element) RemoveClass(token string) { e.classList.Call("remove", token) }

func main() {
	global := js.Global()
	doc := global.Get("document")
	run := func() {
		decorate.Apply(global.Get("location").Get("pathname").String(), document{doc})
	}

	if doc.Get("readyState").String() != "loading" {
		run()
		return
	}

	done := make(chan struct{})
	var onReady js.Func
	onReady = js.FuncOf(func(this js.Value, args []js.Value) any {
		run()
		onReady.Release()
		close(done)
		return nil
	})
	doc.Call("addEventListener", "DOMContentLoaded", onReady, map[string]any{"once": true})
	<-done
}
