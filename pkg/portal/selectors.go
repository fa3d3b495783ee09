package portal

// Portal DOM contract. CSS unless the name ends in XPath.
const (
	selLoginUser = `#client_code`
	selLoginPass = `#client_password`
	selSearchBox = `input[placeholder="Buscá tu repuesto..."]`

	// Each product card carries a bar of four traffic lights; the third is the BA branch.
	selStockBar = `div.d-flex.w-100.justify-content-center.align-items-center`
	selQtyInput = `input[type="number"].text-center`

	selConfirmTable     = `div.table-responsive table`
	selConfirmTableBody = `div.table-responsive table tbody`
	selObservations     = `#observaciones`

	xpathLoginButton = `//button[contains(@class,"tp-login-btn") and contains(normalize-space(.),"Iniciar Sesión")]`
	xpathSendOrder   = `//button[contains(@class,"btn-dark") and contains(normalize-space(.),"Enviar el pedido")]`
	xpathConfirm     = `//button[contains(@class,"btn-primary") and contains(normalize-space(.),"Confirmar")]`

	confirmBannerText = "Tenés confirmaciones de stock"

	rowAttr = "data-partsbot-row"
)
