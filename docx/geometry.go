package docx

// Page geometry, US Letter with one inch margins. Twips are twentieths of a
// point, EMU are English Metric Units (914400 per inch, 9525 per pixel at
// 96 dpi, 635 per twip).
const (
	PageWidthTwips  = 12240
	PageHeightTwips = 15840
	PageMarginTwips = 1440

	EMUPerTwip  = 635
	EMUPerPixel = 9525

	// MinCellWidthTwips is the floor for a single table column, 0.55 inch.
	MinCellWidthTwips = 792
)

// ContentWidthTwips is the horizontal space available to block content.
const ContentWidthTwips = PageWidthTwips - 2*PageMarginTwips

// ContentWidthEMU is the same width in EMU, used for drawing extents.
const ContentWidthEMU = ContentWidthTwips * EMUPerTwip
