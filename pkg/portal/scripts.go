package portal

import (
	"encoding/json"
	"fmt"
)

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// tagRowScript marks the product card containing code with rowAttr=token.
// It mirrors a text search: the first text node containing code
// (case-insensitive) is walked up to the nearest div holding both the stock
// bar and the quantity input.
func tagRowScript(code, token string) string {
	return fmt.Sprintf(`(function(code, token, attr, barSel, qtySel) {
	const want = code.trim().toLowerCase();
	if (!want) return false;
	document.querySelectorAll('[' + attr + ']').forEach(function(el) { el.removeAttribute(attr); });
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT);
	let node;
	while ((node = walker.nextNode())) {
		if (node.textContent.toLowerCase().indexOf(want) === -1) continue;
		let el = node.parentElement;
		while (el && el !== document.body) {
			if (el.tagName === 'DIV' && el.querySelector(barSel) && el.querySelector(qtySel)) {
				el.setAttribute(attr, token);
				return true;
			}
			el = el.parentElement;
		}
	}
	return false;
})(%s, %s, %s, %s, %s)`, jsString(code), jsString(token), jsString(rowAttr), jsString(selStockBar), jsString(selQtyInput))
}

// indicatorRead is the raw third-light read of a stock bar.
type indicatorRead struct {
	Found    bool   `json:"found"`
	Children int    `json:"children"`
	Color    string `json:"color"`
	Text     string `json:"text"`
}

func readIndicatorScript(barSelector string) string {
	return fmt.Sprintf(`(function(sel) {
	const bar = document.querySelector(sel);
	if (!bar) return {found: false, children: 0, color: '', text: ''};
	const kids = bar.querySelectorAll(':scope > div');
	if (kids.length < 3) return {found: true, children: kids.length, color: '', text: ''};
	const ba = kids[2];
	return {
		found: true,
		children: kids.length,
		color: getComputedStyle(ba).backgroundColor,
		text: (ba.textContent || '').trim()
	};
})(%s)`, jsString(barSelector))
}

// clickBannerScript clicks the confirmations banner if present and reports whether it was.
func clickBannerScript() string {
	return fmt.Sprintf(`(function(text) {
	const xp = '//*[contains(normalize-space(text()), "' + text + '")]';
	const hit = document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!hit) return false;
	try { hit.click(); } catch (e) {}
	return true;
})(%s)`, jsString(confirmBannerText))
}

func outerHTMLScript(selector string) string {
	return fmt.Sprintf(`(function(sel) {
	const el = document.querySelector(sel);
	return el ? el.outerHTML : '';
})(%s)`, jsString(selector))
}
