// Package docx packages document blocks as an Office Open XML word
// processing document.
//
// The body (word/document.xml) is generated from the Block model. The
// style sheet, numbering, document properties and footer parts are
// text/template sources loaded through an assets.AssetLoader, so a custom
// asset directory can restyle the output without code changes.
//
// Pictures are stored once per distinct PNG under word/media and sized in
// EMUs from their display pixels. Consecutive runs sharing a link target
// become a single external hyperlink.
package docx
