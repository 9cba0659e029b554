package handlers

// @title Sales Document API
// @version 1.0
// @description Local API for composing, totalling, rendering and exporting receipts, invoices and quotes

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host 127.0.0.1:8081
// @BasePath /api/v1

// @tag.name documents
// @tag.description Totals, rendering and export of sales documents

// @tag.name templates
// @tag.description Registered document templates

// @tag.name files
// @tag.description Transient export artifacts
