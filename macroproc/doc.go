/*

The macroproc package implements an m4-style macro processor over a byte
stream. You construct a Processor and then feed it input with the Process
method. Text is copied to the output with quoted literals and comments
passed through unexpanded; any other word is looked up in the macro table
and, if it names a macro, is replaced by the macro's expansion which is
itself re-scanned for further macros. Macros can be given comma-separated
arguments in parentheses immediately following the name.

Output can be diverted into numbered buffers and brought back in a
different order. The complete processor state (delimiters, macro bindings
and diverted text) can be written out with SaveState and restored with
LoadState so that a later run can resume where an earlier one stopped.

*/
package macroproc
