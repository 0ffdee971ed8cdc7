package template

// Default returns the product label: name, lot and serial number down the
// left, a QR code of the serial number spanning three rows on the right, and
// the serial number printed in full width underneath.
//
//	+-----------+-----------+-----------+
//	| Ürün Adı  | URUN_ADI  |           |
//	+-----------+-----------+    QR     |
//	| Lot No    | LOT_NO    | (SERI_NO) |
//	+-----------+-----------+           |
//	| Seri No   | SERI_NO   |           |
//	+-----------+-----------+-----------+
//	|              SERI_NO              |
//	+-----------------------------------+
func Default() Template {
	label := Style{FontSize: "10px", Color: "#555555"}
	return Template{
		Name:  "urun-etiketi",
		Width: DefaultWidth,
		Cells: []Cell{
			{ID: "name-label", Kind: KindStaticText, Content: "Ürün Adı", ColSpan: 2, Style: label},
			{ID: "name", Kind: KindText, Field: "URUN_ADI", ColSpan: 2},
			{ID: "qr", Kind: KindCodeImage, Field: "SERI_NO", ColSpan: 2, RowSpan: 3, Align: AlignCenter},
			{ID: "lot-label", Kind: KindStaticText, Content: "Lot No", ColSpan: 2, Style: label},
			{ID: "lot", Kind: KindText, Field: "LOT_NO", ColSpan: 2},
			{ID: "serial-label", Kind: KindStaticText, Content: "Seri No", ColSpan: 2, Style: label},
			{ID: "serial", Kind: KindText, Field: "SERI_NO", ColSpan: 2},
			{ID: "serial-text", Kind: KindCodeText, Field: "SERI_NO", ColSpan: 6, Style: Style{FontSize: "14px"}},
		},
	}
}
