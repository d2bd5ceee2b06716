package paywidget

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// ButtonSpec is everything a renderer needs to draw one payment button.
type ButtonSpec struct {
	SDK          SDK
	ContainerID  string
	CallbackBase string
	Amount       string
	Currency     string
}

// Renderer draws a payment button into a container.
type Renderer interface {
	Render(ctx context.Context, c *Container, spec ButtonSpec) error
}

// HTMLRenderer emits the button placeholder plus the PayPal Buttons
// bootstrap wired to the checkout callback endpoints.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the button fragment.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("paypal-button").Parse(buttonFragment)
	if err != nil {
		return nil, fmt.Errorf("parse button fragment: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(ctx context.Context, c *Container, spec ButtonSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if spec.ContainerID == "" {
		spec.ContainerID = "paypal-button-container"
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, spec); err != nil {
		return fmt.Errorf("render button: %w", err)
	}
	c.Append(template.HTML(buf.String()))
	return nil
}

const buttonFragment = `<div class="paypal-widget" data-currency="{{.Currency}}" data-amount="{{.Amount}}">
  <div id="{{.ContainerID}}"></div>
  <p class="payment-error" id="{{.ContainerID}}-error" role="alert" hidden></p>
</div>
<script>
(function () {
  var base = {{.CallbackBase}};
  var containerId = {{.ContainerID}};
  var errorBox = document.getElementById(containerId + "-error");

  function post(path, body) {
    return fetch(base + path, {
      method: "POST",
      credentials: "same-origin",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify(body || {})
    }).then(function (res) {
      return res.json().catch(function () { return {}; }).then(function (data) {
        if (!res.ok) {
          var msg = (data && data.error && data.error.message) || "Payment error occurred";
          throw new Error(msg);
        }
        return data;
      });
    });
  }

  function showError(err) {
    errorBox.textContent = (err && err.message) || "Payment error occurred";
    errorBox.hidden = false;
  }

  function boot() {
    if (!window.paypal || !window.paypal.Buttons) {
      post("/error", { kind: "sdk_load" });
      showError(new Error("PayPal konnte nicht geladen werden. Bitte lade die Seite neu."));
      return;
    }
    window.paypal.Buttons({
      style: { layout: "vertical", color: "blue", shape: "rect", label: "pay", height: 45 },
      createOrder: function () {
        errorBox.hidden = true;
        return post("/orders").then(function (data) { return data.orderID; }).catch(function (err) {
          showError(err);
          throw err;
        });
      },
      onApprove: function (data) {
        return post("/approve", { orderID: data.orderID }).then(function (out) {
          window.location.href = out.redirect || "/success";
        }).catch(showError);
      },
      onCancel: function () { post("/cancel"); },
      onError: function () {
        post("/error", { kind: "widget" }).catch(showError);
      }
    }).render("#" + containerId);
  }

  var script = document.createElement("script");
  script.src = {{.SDK.ScriptURL}};
  script.onload = boot;
  script.onerror = function () {
    post("/error", { kind: "sdk_load" });
    showError(new Error("PayPal konnte nicht geladen werden. Bitte lade die Seite neu."));
  };
  document.head.appendChild(script);
  window.addEventListener("pagehide", function () {
    navigator.sendBeacon && navigator.sendBeacon(base + "/unmount");
  });
})();
</script>
`
