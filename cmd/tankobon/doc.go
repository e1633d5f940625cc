// Command tankobon packs manga chapter archives into sized volume files
// ready for Kindle delivery.
package main
