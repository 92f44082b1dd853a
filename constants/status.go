package constants

// Source is the provenance tag carried by a recommendation set.
type Source string

// Stable values (these exact strings go over the wire).
const (
	SourceService       Source = "service"        // parsed or degraded upstream model output
	SourceLocalFallback Source = "local-fallback" // no credential configured
	SourceError         Source = "error"          // upstream call failed
)

// Extraction methods recorded on ExtractedText.
const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
)

// Supported PDF text-layer engines.
const (
	PDFEngineNative    = "native"
	PDFEnginePDFCPU    = "pdfcpu"
	PDFEnginePdftotext = "pdftotext"
)

// Supported recommendation service providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
)
